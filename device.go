package indiclient

import "sort"

// Device holds the property vectors of one INDI device and applies
// incoming Commands to transition its state (spec §3, §4.B).
type Device struct {
	parameters map[string]Parameter
	names      []string
	groups     []*string
}

// NewDevice returns an empty device.
func NewDevice() *Device {
	return &Device{
		parameters: map[string]Parameter{},
	}
}

// Parameters returns the device's name-to-property map. Callers must not
// mutate the returned map.
func (d *Device) Parameters() map[string]Parameter {
	return d.parameters
}

// ParameterNames returns property names in definition order: the order
// each name was first defined in, never reordered by a later
// redefinition (spec §4.B.2, resolving open question 1 by not appending
// a duplicate on redefinition).
func (d *Device) ParameterNames() []string {
	return d.names
}

// Groups returns the device's group labels in first-seen order,
// including a single entry for properties defined without a group
// (represented as a nil group pointer). The list is append-only for the
// device's lifetime; deleting a property does not prune its group
// (spec §9, open question 2).
func (d *Device) Groups() []*string {
	return d.groups
}

// GroupNames returns the device's non-nil group labels, sorted, for
// display purposes. This mirrors the teacher's Device.Groups() helper,
// adapted to the append-only []*string representation above.
func (d *Device) GroupNames() []string {
	names := make([]string, 0, len(d.groups))
	for _, g := range d.groups {
		if g != nil {
			names = append(names, *g)
		}
	}
	sort.Strings(names)
	return names
}

// Update applies command to this device's state and returns the affected
// parameter, if any (spec §4.B.1).
func (d *Device) Update(cmd Command) (Parameter, error) {
	switch c := cmd.(type) {
	case *DefTextVectorCommand:
		return d.defineParam(c.Name, c.Group, newTextVectorFromDef(c))
	case *DefNumberVectorCommand:
		return d.defineParam(c.Name, c.Group, newNumberVectorFromDef(c))
	case *DefSwitchVectorCommand:
		return d.defineParam(c.Name, c.Group, newSwitchVectorFromDef(c))
	case *DefLightVectorCommand:
		return d.defineParam(c.Name, c.Group, newLightVectorFromDef(c))
	case *DefBlobVectorCommand:
		return d.defineParam(c.Name, c.Group, newBlobVectorFromDef(c))

	case *SetTextVectorCommand:
		return d.updateParam(c.Name, func(p Parameter) (Parameter, error) {
			tv, ok := p.(*TextVector)
			if !ok {
				return nil, &UpdateError{Kind: ErrParameterTypeMismatch, Name: c.Name}
			}
			applySetTextVector(tv, c)
			return tv, nil
		})
	case *SetNumberVectorCommand:
		return d.updateParam(c.Name, func(p Parameter) (Parameter, error) {
			nv, ok := p.(*NumberVector)
			if !ok {
				return nil, &UpdateError{Kind: ErrParameterTypeMismatch, Name: c.Name}
			}
			applySetNumberVector(nv, c)
			return nv, nil
		})
	case *SetSwitchVectorCommand:
		return d.updateParam(c.Name, func(p Parameter) (Parameter, error) {
			sv, ok := p.(*SwitchVector)
			if !ok {
				return nil, &UpdateError{Kind: ErrParameterTypeMismatch, Name: c.Name}
			}
			applySetSwitchVector(sv, c)
			return sv, nil
		})
	case *SetLightVectorCommand:
		return d.updateParam(c.Name, func(p Parameter) (Parameter, error) {
			lv, ok := p.(*LightVector)
			if !ok {
				return nil, &UpdateError{Kind: ErrParameterTypeMismatch, Name: c.Name}
			}
			applySetLightVector(lv, c)
			return lv, nil
		})
	case *SetBlobVectorCommand:
		return d.updateParam(c.Name, func(p Parameter) (Parameter, error) {
			bv, ok := p.(*BlobVector)
			if !ok {
				return nil, &UpdateError{Kind: ErrParameterTypeMismatch, Name: c.Name}
			}
			applySetBlobVector(bv, c)
			return bv, nil
		})

	case *DelPropertyCommand:
		d.deleteParam(c.Name)
		return nil, nil

	case *MessageCommand, *GetPropertiesCommand, *EnableBlobCommand,
		*NewTextVectorCommand, *NewNumberVectorCommand, *NewSwitchVectorCommand, *NewBlobVectorCommand:
		return nil, nil

	default:
		return nil, nil
	}
}

func (d *Device) defineParam(name string, group *string, param Parameter) (Parameter, error) {
	if _, exists := d.parameters[name]; !exists {
		d.names = append(d.names, name)
	}

	found := false
	for _, g := range d.groups {
		if sameGroup(g, group) {
			found = true
			break
		}
	}
	if !found {
		d.groups = append(d.groups, group)
	}

	d.parameters[name] = param
	return param, nil
}

func sameGroup(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (d *Device) updateParam(name string, apply func(Parameter) (Parameter, error)) (Parameter, error) {
	p, ok := d.parameters[name]
	if !ok {
		return nil, &UpdateError{Kind: ErrParameterMissing, Name: name}
	}

	// Type is checked inside apply before anything is mutated in place
	// (spec §7: "implementations must check variant match before
	// mutating"), so a type mismatch here leaves the stored parameter
	// untouched.
	updated, err := apply(p)
	if err != nil {
		return nil, err
	}
	d.parameters[name] = updated
	return updated, nil
}

func (d *Device) deleteParam(name *string) {
	if name == nil {
		d.parameters = map[string]Parameter{}
		d.names = nil
		return
	}

	if _, ok := d.parameters[*name]; !ok {
		return
	}
	delete(d.parameters, *name)

	for i, n := range d.names {
		if n == *name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}
