package sampler

import "fmt"

// Mode selects one of the two sampling policies. The only implementations
// are CountMode and DealMode.
type Mode interface {
	fmt.Stringer
	isMode()
}

// CountMode keeps a uniform random sample of Samples lines.
type CountMode struct {
	Samples int
}

// DealMode routes every line to at most one output of Table.
type DealMode struct {
	Table Table
}

func (CountMode) isMode() {}
func (DealMode) isMode()  {}

func (m CountMode) String() string {
	return "count"
}

func (m DealMode) String() string {
	return "deal"
}
