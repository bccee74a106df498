package model

import "fmt"

// ForceKind enumerates the supported excitation shapes.
type ForceKind int

const (
	ForceNone ForceKind = iota
	ForceSine
	ForceCosine
	ForceRandom
)

func (k ForceKind) String() string {
	switch k {
	case ForceNone:
		return "NONE"
	case ForceSine:
		return "SIN"
	case ForceCosine:
		return "COS"
	case ForceRandom:
		return "RANDOM"
	}
	return fmt.Sprintf("ForceKind(%d)", int(k))
}

// ParseForceKind maps an input-file TYPE value to a kind.
func ParseForceKind(s string) (ForceKind, error) {
	switch s {
	case "NONE":
		return ForceNone, nil
	case "SIN":
		return ForceSine, nil
	case "COS":
		return ForceCosine, nil
	case "RANDOM":
		return ForceRandom, nil
	}
	return ForceNone, fmt.Errorf("model: unknown force type %q", s)
}

// ForceSpec describes the external excitation applied to one body.
// Start and Stop bound the active window. The Has flags record which fields
// were given explicitly, so downstream validation can tell an absent value
// from a literal zero. The zero value means no excitation.
type ForceSpec struct {
	Kind         ForceKind
	Amplitude    float64
	Omega        float64
	Start        float64
	Stop         float64
	HasAmplitude bool
	HasOmega     bool
	HasStart     bool
	HasStop      bool
}
