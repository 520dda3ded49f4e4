package indiclient

// This file builds stored Parameter values from def commands and applies
// set commands to already-stored Parameter values, grounded on the
// teacher's defXxxVector/setXxxVector methods in indiclient.go, adapted
// from map[string]Device-of-five-maps + time.Now()-stamped Messages to
// the tagged-union Parameter model spec.md §3/§4.B calls for.

func newTextVectorFromDef(c *DefTextVectorCommand) *TextVector {
	v := &TextVector{
		Name:      c.Name,
		Label:     c.Label,
		Group:     c.Group,
		State:     c.State,
		Perm:      c.Perm,
		Timeout:   c.Timeout,
		Timestamp: c.Timestamp,
		Values:    make(map[string]TextMember, len(c.Texts)),
	}
	for _, m := range c.Texts {
		v.Values[m.Name] = TextMember{Label: m.Label, Value: m.Value}
	}
	return v
}

func applySetTextVector(v *TextVector, c *SetTextVectorCommand) {
	v.State = c.State
	v.Timeout = c.Timeout
	v.Timestamp = c.Timestamp
	for _, m := range c.Texts {
		existing, ok := v.Values[m.Name]
		if !ok {
			continue
		}
		existing.Value = m.Value
		v.Values[m.Name] = existing
	}
}

func newNumberVectorFromDef(c *DefNumberVectorCommand) *NumberVector {
	v := &NumberVector{
		Name:      c.Name,
		Label:     c.Label,
		Group:     c.Group,
		State:     c.State,
		Perm:      c.Perm,
		Timeout:   c.Timeout,
		Timestamp: c.Timestamp,
		Values:    make(map[string]NumberMember, len(c.Numbers)),
	}
	for _, m := range c.Numbers {
		v.Values[m.Name] = NumberMember{
			Label:  m.Label,
			Format: m.Format,
			Min:    m.Min,
			Max:    m.Max,
			Step:   m.Step,
			Value:  m.Value,
		}
	}
	return v
}

func applySetNumberVector(v *NumberVector, c *SetNumberVectorCommand) {
	v.State = c.State
	v.Timeout = c.Timeout
	v.Timestamp = c.Timestamp
	for _, m := range c.Numbers {
		existing, ok := v.Values[m.Name]
		if !ok {
			continue
		}
		existing.Value = m.Value
		if m.Min != nil {
			existing.Min = *m.Min
		}
		if m.Max != nil {
			existing.Max = *m.Max
		}
		if m.Step != nil {
			existing.Step = *m.Step
		}
		v.Values[m.Name] = existing
	}
}

func newSwitchVectorFromDef(c *DefSwitchVectorCommand) *SwitchVector {
	v := &SwitchVector{
		Name:      c.Name,
		Label:     c.Label,
		Group:     c.Group,
		State:     c.State,
		Perm:      c.Perm,
		Rule:      c.Rule,
		Timeout:   c.Timeout,
		Timestamp: c.Timestamp,
		Values:    make(map[string]SwitchMember, len(c.Switches)),
	}
	for _, m := range c.Switches {
		v.Values[m.Name] = SwitchMember{Label: m.Label, Value: m.Value}
	}
	return v
}

func applySetSwitchVector(v *SwitchVector, c *SetSwitchVectorCommand) {
	v.State = c.State
	v.Timeout = c.Timeout
	v.Timestamp = c.Timestamp
	for _, m := range c.Switches {
		existing, ok := v.Values[m.Name]
		if !ok {
			continue
		}
		existing.Value = m.Value
		v.Values[m.Name] = existing
	}
}

func newLightVectorFromDef(c *DefLightVectorCommand) *LightVector {
	v := &LightVector{
		Name:      c.Name,
		Label:     c.Label,
		Group:     c.Group,
		State:     c.State,
		Timestamp: c.Timestamp,
		Values:    make(map[string]LightMember, len(c.Lights)),
	}
	for _, m := range c.Lights {
		v.Values[m.Name] = LightMember{Label: m.Label, Value: m.Value}
	}
	return v
}

func applySetLightVector(v *LightVector, c *SetLightVectorCommand) {
	v.State = c.State
	v.Timestamp = c.Timestamp
	for _, m := range c.Lights {
		existing, ok := v.Values[m.Name]
		if !ok {
			continue
		}
		existing.Value = m.Value
		v.Values[m.Name] = existing
	}
}

func newBlobVectorFromDef(c *DefBlobVectorCommand) *BlobVector {
	v := &BlobVector{
		Name:      c.Name,
		Label:     c.Label,
		Group:     c.Group,
		State:     c.State,
		Perm:      c.Perm,
		Timeout:   c.Timeout,
		Timestamp: c.Timestamp,
		Values:    make(map[string]BlobMember, len(c.Blobs)),
	}
	for _, m := range c.Blobs {
		v.Values[m.Name] = BlobMember{Label: m.Label}
	}
	return v
}

func applySetBlobVector(v *BlobVector, c *SetBlobVectorCommand) {
	v.State = c.State
	v.Timeout = c.Timeout
	v.Timestamp = c.Timestamp
	for _, m := range c.Blobs {
		existing, ok := v.Values[m.Name]
		if !ok {
			continue
		}
		format := m.Format
		existing.Format = &format
		existing.Value = m.Value
		v.Values[m.Name] = existing
	}
}
