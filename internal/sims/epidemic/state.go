package epidemic

import "fmt"

// State enumerates the health of a single cell.
type State uint8

const (
	Susceptible State = iota
	Affected
	Recovered
	Dead
	Vaccinated
)

// NumStates is the number of health states.
const NumStates = 5

// States lists every state in display order.
var States = [NumStates]State{Susceptible, Affected, Recovered, Dead, Vaccinated}

var stateNames = [NumStates]string{"Susceptible", "Affected", "Recovered", "Dead", "Vaccinated"}

func (s State) String() string {
	if int(s) < NumStates {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Valid reports whether s is one of the five health states.
func (s State) Valid() bool { return int(s) < NumStates }
