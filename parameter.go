package indiclient

import "time"

// Parameter is the tagged union of the five INDI property vector kinds.
// The set is closed; callers switch on the concrete type rather than
// extending the interface.
type Parameter interface {
	// ParamName returns the vector's name, unique within its device.
	ParamName() string
	// ParamGroup returns the vector's group label, or nil if absent.
	ParamGroup() *string
	// ParamLabel returns the vector's human-readable label, or nil if absent.
	ParamLabel() *string
	// ParamState returns the vector's current state.
	ParamState() PropertyState

	isParameter()
}

// TextMember is one value of a TextVector.
type TextMember struct {
	Label *string
	Value string
}

// TextVector is a named, typed collection of string values.
type TextVector struct {
	Name      string
	Label     *string
	Group     *string
	State     PropertyState
	Perm      PropertyPerm
	Timeout   *int
	Timestamp *time.Time
	Values    map[string]TextMember
}

func (v *TextVector) ParamName() string        { return v.Name }
func (v *TextVector) ParamGroup() *string       { return v.Group }
func (v *TextVector) ParamLabel() *string       { return v.Label }
func (v *TextVector) ParamState() PropertyState { return v.State }
func (v *TextVector) isParameter()              {}

// NumberMember is one value of a NumberVector.
type NumberMember struct {
	Label  *string
	Format string
	Min    float64
	Max    float64
	Step   float64
	Value  float64
}

// NumberVector is a named, typed collection of floating-point values.
type NumberVector struct {
	Name      string
	Label     *string
	Group     *string
	State     PropertyState
	Perm      PropertyPerm
	Timeout   *int
	Timestamp *time.Time
	Values    map[string]NumberMember
}

func (v *NumberVector) ParamName() string        { return v.Name }
func (v *NumberVector) ParamGroup() *string       { return v.Group }
func (v *NumberVector) ParamLabel() *string       { return v.Label }
func (v *NumberVector) ParamState() PropertyState { return v.State }
func (v *NumberVector) isParameter()              {}

// SwitchMember is one value of a SwitchVector.
type SwitchMember struct {
	Label *string
	Value SwitchState
}

// SwitchVector is a named, typed collection of on/off values.
type SwitchVector struct {
	Name      string
	Label     *string
	Group     *string
	State     PropertyState
	Perm      PropertyPerm
	Rule      SwitchRule
	Timeout   *int
	Timestamp *time.Time
	Values    map[string]SwitchMember
}

func (v *SwitchVector) ParamName() string        { return v.Name }
func (v *SwitchVector) ParamGroup() *string       { return v.Group }
func (v *SwitchVector) ParamLabel() *string       { return v.Label }
func (v *SwitchVector) ParamState() PropertyState { return v.State }
func (v *SwitchVector) isParameter()              {}

// LightMember is one value of a LightVector.
type LightMember struct {
	Label *string
	Value PropertyState
}

// LightVector is a named, read-only collection of passive indicator
// lights. It never carries a permission, rule, or timeout.
type LightVector struct {
	Name      string
	Label     *string
	Group     *string
	State     PropertyState
	Timestamp *time.Time
	Values    map[string]LightMember
}

func (v *LightVector) ParamName() string        { return v.Name }
func (v *LightVector) ParamGroup() *string       { return v.Group }
func (v *LightVector) ParamLabel() *string       { return v.Label }
func (v *LightVector) ParamState() PropertyState { return v.State }
func (v *LightVector) isParameter()              {}

// BlobMember is one value of a BlobVector. Value is nil until at least
// one successful setBLOBVector has been applied for this member.
type BlobMember struct {
	Label  *string
	Format *string
	Value  []byte
}

// BlobVector is a named collection of binary large objects.
type BlobVector struct {
	Name         string
	Label        *string
	Group        *string
	State        PropertyState
	Perm         PropertyPerm
	Timeout      *int
	Timestamp    *time.Time
	EnableStatus BlobEnable
	Values       map[string]BlobMember
}

func (v *BlobVector) ParamName() string        { return v.Name }
func (v *BlobVector) ParamGroup() *string       { return v.Group }
func (v *BlobVector) ParamLabel() *string       { return v.Label }
func (v *BlobVector) ParamState() PropertyState { return v.State }
func (v *BlobVector) isParameter()              {}
