package ingest

// SampleName is the display name of the bundled demo document. The
// filename follows the year_event convention so metadata extraction
// resolves it without an LLM.
const SampleName = "2023_Monaco_Grand_Prix.txt"

// SampleDocument returns a bundled race report for offline demos and
// tests. Its story lines up with the mock telemetry dataset so the full
// pipeline produces a coherent, corroborated timeline without network
// access.
func SampleDocument() string {
	return sampleMonaco2023
}

const sampleMonaco2023 = `
[PAGE 1]
FORMULA 1 RACE REPORT - MONACO GRAND PRIX 2023

SESSION: RACE
DATE: May 28, 2023
LOCATION: Circuit de Monaco, Monte Carlo

RACE OVERVIEW
Max Verstappen converted pole position into a controlled victory around
the streets of Monte Carlo, managing two caution periods and a late rain
shower. Fernando Alonso kept the pressure on throughout and finished
second, with Esteban Ocon completing the podium after a bold switch to
intermediate tyres.

OPENING PHASE
The start was clean, though a minor first-corner scuffle at Ste Devote
left debris concerns that the stewards noted without further action.
Verstappen controlled the early laps on medium tyres while Alonso shadowed
him within two seconds. On lap 10 a yellow flag was shown in the final
sector after a slow car at Rascasse.

On lap 12 the race was neutralized under a virtual safety car when
marshals recovered a stranded car near the chicane. Racing resumed on
lap 13 with the order unchanged at the front.

[PAGE 2]
MIDDLE STINT AND SAFETY CAR
The decisive moment came on lap 21, when a full safety car was deployed
for debris at Ste Devote. Both leaders reacted immediately: Verstappen
and Alonso pitted together on lap 22, taking hard compound tyres and
holding position through the pit cycle. The safety car returned to the
pits at the end of lap 24.

The stewards placed car 31 under investigation on lap 30 for track
limits, but no penalty followed. Ocon, running long on his opening hard
tyre stint, stayed out until the weather turned.

RAIN AND FINAL PHASE
Light rain arrived around lap 40, concentrated in the section from the
casino down to turn eight. Ocon pitted on lap 34 for intermediates just
as conditions worsened, a call that secured his podium. Charles Leclerc
retired on lap 41 with a gearbox issue, a bitter end to his home race.

Verstappen set the fastest lap of the race on lap 52 as the track dried,
underlining his control. Alonso crossed the line 27.9 seconds behind,
with Ocon a further nine seconds back.

RESULT
1. Max Verstappen (Red Bull Racing)
2. Fernando Alonso (Aston Martin)
3. Esteban Ocon (Alpine)
4. Lewis Hamilton (Mercedes)
DNF: Charles Leclerc (Ferrari), lap 41, gearbox.
`
