package snapshot

// Status is the display state of an account, derived from its renter presence
// and the frozen/deprioritized flags with a fixed precedence so the inventory
// list and the detail panel can never disagree.
type Status int

const (
	StatusAvailable Status = iota
	StatusRented
	StatusFrozen
	StatusDeprioritized
)

func (s Status) String() string {
	switch s {
	case StatusRented:
		return "rented"
	case StatusFrozen:
		return "frozen"
	case StatusDeprioritized:
		return "deprioritized"
	default:
		return "available"
	}
}

// DeriveStatus resolves the flag combination with precedence
// deprioritized > frozen > rented > available.
func DeriveStatus(deprioritized, frozen, rented bool) Status {
	switch {
	case deprioritized:
		return StatusDeprioritized
	case frozen:
		return StatusFrozen
	case rented:
		return StatusRented
	default:
		return StatusAvailable
	}
}
