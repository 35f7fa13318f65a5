package models

type Gender int

const (
	Male Gender = iota
	Female
)

// GenderLabels is indexed by the classifier's output position.
var GenderLabels = [...]string{
	Male:   "Male",
	Female: "Female",
}

func (g Gender) String() string {
	if g < 0 || int(g) >= len(GenderLabels) {
		return "Unknown"
	}
	return GenderLabels[g]
}
