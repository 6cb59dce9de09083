package stepseq

import "errors"

// chain concatenates member sequences into one interaction stream.
type chain struct {
	members []Sequence
	cur     int
}

// Chain returns a sequence that runs members one after another.
//
// Step forwards the input to the current member. When that member reports
// exhaustion the chain moves on and re-delivers the same input to the next
// one, so a member's final state change never swallows a value meant for its
// successor. Terminate follows the same rule: members that ignore the signal
// are finished and the signal moves on until one of them answers it.
func Chain(members ...Sequence) Sequence {
	return &chain{members: members}
}

func (c *chain) Step(in any) (any, bool) {
	for c.cur < len(c.members) {
		if out, ok := c.members[c.cur].Step(in); ok {
			return out, true
		}
		c.cur++
	}
	return nil, false
}

func (c *chain) Terminate() (any, bool) {
	for c.cur < len(c.members) {
		out, ok := c.members[c.cur].Terminate()
		c.cur++
		if ok {
			return out, true
		}
	}
	return nil, false
}

// Close closes every member that holds resources.
func (c *chain) Close() error {
	var errs []error
	for _, m := range c.members {
		if err := Close(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
