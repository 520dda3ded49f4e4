package indiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDevice_DefineThenSetNumber_PreservesMetadata(t *testing.T) {
	d := NewDevice()

	label := "Exposure"
	_, err := d.Update(&DefNumberVectorCommand{
		Device: "CCD Simulator",
		Name:   "Exposure",
		Label:  &label,
		State:  PropertyStateOk,
		Perm:   PropertyPermRW,
		Numbers: []DefNumberMember{
			{Name: "seconds", Format: "%4.0f", Min: 0, Max: 100, Step: 1, Value: 13.3},
		},
	})
	require.NoError(t, err)

	_, err = d.Update(&SetNumberVectorCommand{
		Device: "CCD Simulator",
		Name:   "Exposure",
		State:  PropertyStateOk,
		Numbers: []OneNumberMember{
			{Name: "seconds", Value: 5.0},
		},
	})
	require.NoError(t, err)

	p := d.Parameters()["Exposure"]
	nv, ok := p.(*NumberVector)
	require.True(t, ok)
	member := nv.Values["seconds"]
	assert.Equal(t, "%4.0f", member.Format)
	assert.Equal(t, 0.0, member.Min)
	assert.Equal(t, 100.0, member.Max)
	assert.Equal(t, 1.0, member.Step)
	assert.Equal(t, 5.0, member.Value)
}

func TestDevice_DefineThenSetText(t *testing.T) {
	d := NewDevice()
	label := "Info"
	_, err := d.Update(&DefTextVectorCommand{
		Device: "d", Name: "Info", State: PropertyStateOk, Perm: PropertyPermRW,
		Texts: []DefTextMember{{Name: "msg", Label: &label, Value: "something"}},
	})
	require.NoError(t, err)

	_, err = d.Update(&SetTextVectorCommand{
		Device: "d", Name: "Info", State: PropertyStateOk,
		Texts: []OneTextMember{{Name: "msg", Value: "something else"}},
	})
	require.NoError(t, err)

	tv := d.Parameters()["Info"].(*TextVector)
	assert.Equal(t, "something else", tv.Values["msg"].Value)
	require.NotNil(t, tv.Values["msg"].Label)
	assert.Equal(t, "Info", *tv.Values["msg"].Label)
}

func TestDevice_TypeMismatchLeavesParameterUntouched(t *testing.T) {
	d := NewDevice()
	_, err := d.Update(&DefNumberVectorCommand{
		Device: "d", Name: "Exposure", State: PropertyStateOk, Perm: PropertyPermRW,
		Numbers: []DefNumberMember{{Name: "seconds", Format: "%4.0f", Value: 1}},
	})
	require.NoError(t, err)

	_, err = d.Update(&SetSwitchVectorCommand{
		Device: "d", Name: "Exposure", State: PropertyStateOk,
		Switches: []OneSwitchMember{{Name: "seconds", Value: SwitchStateOn}},
	})
	require.Error(t, err)
	assert.True(t, IsParameterTypeMismatch(err))

	p := d.Parameters()["Exposure"]
	nv, ok := p.(*NumberVector)
	require.True(t, ok)
	assert.Equal(t, 1.0, nv.Values["seconds"].Value)
}

func TestDevice_RedefinitionIsIdempotentForNames(t *testing.T) {
	d := NewDevice()
	def := &DefSwitchVectorCommand{
		Device: "d", Name: "Exposure", State: PropertyStateOk, Perm: PropertyPermRW, Rule: SwitchRuleAtMostOne,
		Switches: []DefSwitchMember{{Name: "seconds", Value: SwitchStateOn}},
	}
	_, err := d.Update(def)
	require.NoError(t, err)
	_, err = d.Update(def)
	require.NoError(t, err)

	assert.Equal(t, []string{"Exposure"}, d.ParameterNames())
}

func TestDevice_NameOrderStability(t *testing.T) {
	d := NewDevice()
	_, _ = d.Update(&DefSwitchVectorCommand{Device: "d", Name: "B", State: PropertyStateOk, Perm: PropertyPermRW, Rule: SwitchRuleAtMostOne})
	_, _ = d.Update(&DefSwitchVectorCommand{Device: "d", Name: "A", State: PropertyStateOk, Perm: PropertyPermRW, Rule: SwitchRuleAtMostOne})
	_, _ = d.Update(&DefSwitchVectorCommand{Device: "d", Name: "B", State: PropertyStateBusy, Perm: PropertyPermRW, Rule: SwitchRuleAtMostOne})

	assert.Equal(t, []string{"B", "A"}, d.ParameterNames())

	name := "A"
	d.Update(&DelPropertyCommand{Device: "d", Name: &name})
	assert.Equal(t, []string{"B"}, d.ParameterNames())

	d.Update(&DelPropertyCommand{Device: "d"})
	assert.Empty(t, d.ParameterNames())
}

func TestDevice_GroupListAppendOnlyOnDelete(t *testing.T) {
	d := NewDevice()
	group := "Main Control"
	_, _ = d.Update(&DefSwitchVectorCommand{
		Device: "d", Name: "Exposure", Group: &group, State: PropertyStateOk,
		Perm: PropertyPermRW, Rule: SwitchRuleAtMostOne,
	})
	assert.Equal(t, []string{"Main Control"}, d.GroupNames())

	name := "Exposure"
	d.Update(&DelPropertyCommand{Device: "d", Name: &name})

	// Group list is append-only for the device's lifetime: deleting the
	// only property in a group does not prune that group.
	assert.Equal(t, []string{"Main Control"}, d.GroupNames())
}

func TestDevice_LightVectorHasNoPermRuleTimeout(t *testing.T) {
	d := NewDevice()
	_, err := d.Update(&DefLightVectorCommand{
		Device: "d", Name: "Status", State: PropertyStateOk,
		Lights: []DefLightMember{{Name: "ok", Value: PropertyStateOk}},
	})
	require.NoError(t, err)

	lv, ok := d.Parameters()["Status"].(*LightVector)
	require.True(t, ok)
	assert.Equal(t, PropertyStateOk, lv.Values["ok"].Value)
}

func TestDevice_SetOnUndefinedPropertyIsMissing(t *testing.T) {
	d := NewDevice()
	_, err := d.Update(&SetSwitchVectorCommand{
		Device: "d", Name: "Nope", State: PropertyStateOk,
	})
	require.Error(t, err)
	assert.True(t, IsParameterMissing(err))
}
