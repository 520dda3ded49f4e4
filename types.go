// Package indiclient is a pure Go implementation of the core of an INDI
// (Instrument Neutral Distributed Interface) client: a streaming XML wire
// codec plus a device-property state store. It supports indiserver
// protocol version "1.7".
//
// See http://indilib.org/develop/developer-manual/106-client-development.html
//
// See http://www.clearskyinstitute.com/INDI/INDI.pdf
package indiclient

// ProtocolVersion is the INDI protocol version string this client speaks.
const ProtocolVersion = "1.7"

// DefaultPort is the default TCP port an indiserver listens on.
const DefaultPort = 7624

// PropertyState represents the current state of a property vector.
type PropertyState string

const (
	PropertyStateIdle  = PropertyState("Idle")
	PropertyStateOk    = PropertyState("Ok")
	PropertyStateBusy  = PropertyState("Busy")
	PropertyStateAlert = PropertyState("Alert")
)

func (s PropertyState) valid() bool {
	switch s {
	case PropertyStateIdle, PropertyStateOk, PropertyStateBusy, PropertyStateAlert:
		return true
	}
	return false
}

// PropertyPerm is a permission hint for a property vector.
//
// The wire values are lowercase ("ro", "wo", "rw"), matching the real
// indiserver protocol and every worked example in this library's test
// suite, even though some documentation of the enumeration capitalizes
// them. We follow the wire, not the prose.
type PropertyPerm string

const (
	PropertyPermRO = PropertyPerm("ro")
	PropertyPermWO = PropertyPerm("wo")
	PropertyPermRW = PropertyPerm("rw")
)

func (p PropertyPerm) valid() bool {
	switch p {
	case PropertyPermRO, PropertyPermWO, PropertyPermRW:
		return true
	}
	return false
}

// SwitchState is the value of one member of a switch vector.
type SwitchState string

const (
	SwitchStateOn  = SwitchState("On")
	SwitchStateOff = SwitchState("Off")
)

func (s SwitchState) valid() bool {
	switch s {
	case SwitchStateOn, SwitchStateOff:
		return true
	}
	return false
}

// SwitchRule hints at how a GUI should present a switch vector's members.
// Rules are not enforced by this client; see spec Non-goals.
type SwitchRule string

const (
	SwitchRuleOneOfMany = SwitchRule("OneOfMany")
	SwitchRuleAtMostOne = SwitchRule("AtMostOne")
	SwitchRuleAnyOfMany = SwitchRule("AnyOfMany")
)

func (r SwitchRule) valid() bool {
	switch r {
	case SwitchRuleOneOfMany, SwitchRuleAtMostOne, SwitchRuleAnyOfMany:
		return true
	}
	return false
}

// BlobEnable controls whether BLOBs are delivered to this client for a device.
type BlobEnable string

const (
	BlobEnableNever = BlobEnable("Never")
	BlobEnableAlso  = BlobEnable("Also")
	BlobEnableOnly  = BlobEnable("Only")
)

func (b BlobEnable) valid() bool {
	switch b {
	case BlobEnableNever, BlobEnableAlso, BlobEnableOnly:
		return true
	}
	return false
}
