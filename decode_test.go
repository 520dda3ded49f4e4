package indiclient

import (
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, xmlText string) Command {
	t.Helper()
	dec := NewDecoder(strings.NewReader(xmlText))
	cmd, err := dec.Next()
	require.NoError(t, err)
	require.NotNil(t, cmd)
	return cmd
}

func TestDecode_DefSwitchVector(t *testing.T) {
	cmd := decodeOne(t, `<defSwitchVector device="CCD Simulator" name="Exposure" label="thingo"
  group="group" state="Ok" perm="rw" rule="AtMostOne" timeout="60"
  timestamp="2022-10-13T07:41:56.301">
  <defSwitch name="seconds" label="asdf">On</defSwitch>
</defSwitchVector>`)

	sv, ok := cmd.(*DefSwitchVectorCommand)
	require.True(t, ok)
	assert.Equal(t, "CCD Simulator", sv.Device)
	assert.Equal(t, "Exposure", sv.Name)
	require.NotNil(t, sv.Label)
	assert.Equal(t, "thingo", *sv.Label)
	require.NotNil(t, sv.Group)
	assert.Equal(t, "group", *sv.Group)
	assert.Equal(t, PropertyStateOk, sv.State)
	assert.Equal(t, PropertyPermRW, sv.Perm)
	assert.Equal(t, SwitchRuleAtMostOne, sv.Rule)
	require.NotNil(t, sv.Timeout)
	assert.Equal(t, 60, *sv.Timeout)
	require.Len(t, sv.Switches, 1)
	assert.Equal(t, "seconds", sv.Switches[0].Name)
	require.NotNil(t, sv.Switches[0].Label)
	assert.Equal(t, "asdf", *sv.Switches[0].Label)
	assert.Equal(t, SwitchStateOn, sv.Switches[0].Value)
}

func TestDecode_SetSwitchVector(t *testing.T) {
	cmd := decodeOne(t, `<setSwitchVector device="CCD Simulator" name="Exposure" state="Ok"
  timeout="60" timestamp="2022-10-13T08:41:56.301">
  <oneSwitch name="seconds">Off</oneSwitch>
</setSwitchVector>`)

	sv, ok := cmd.(*SetSwitchVectorCommand)
	require.True(t, ok)
	require.Len(t, sv.Switches, 1)
	assert.Equal(t, "seconds", sv.Switches[0].Name)
	assert.Equal(t, SwitchStateOff, sv.Switches[0].Value)
	require.NotNil(t, sv.Timestamp)
	assert.Equal(t, 2022, sv.Timestamp.Year())
}

func TestDecode_DefBlobMember(t *testing.T) {
	cmd := decodeOne(t, `<defBLOBVector device="CCD Simulator" name="BLOBs" state="Idle" perm="rw">
  <defBLOB name="INDI_DISABLED" label="Disabled"/>
</defBLOBVector>`)

	bv, ok := cmd.(*DefBlobVectorCommand)
	require.True(t, ok)
	require.Len(t, bv.Blobs, 1)
	assert.Equal(t, "INDI_DISABLED", bv.Blobs[0].Name)
	require.NotNil(t, bv.Blobs[0].Label)
	assert.Equal(t, "Disabled", *bv.Blobs[0].Label)
}

func TestDecode_OneBlobPayload(t *testing.T) {
	payload := make([]byte, 23040)
	for i := range payload {
		payload[i] = byte(i)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	// break the encoded text into lines to exercise newline tolerance (S8).
	var withBreaks strings.Builder
	for len(encoded) > 76 {
		withBreaks.WriteString(encoded[:76])
		withBreaks.WriteByte('\n')
		encoded = encoded[76:]
	}
	withBreaks.WriteString(encoded)

	xmlText := `<setBLOBVector device="CCD Simulator" name="CCD1" state="Ok">
  <oneBLOB name="CCD1" size="23040" enclen="30720" format=".fits">` + withBreaks.String() + `</oneBLOB>
</setBLOBVector>`

	cmd := decodeOne(t, xmlText)
	bv, ok := cmd.(*SetBlobVectorCommand)
	require.True(t, ok)
	require.Len(t, bv.Blobs, 1)
	m := bv.Blobs[0]
	assert.Equal(t, "CCD1", m.Name)
	assert.Equal(t, int64(23040), m.Size)
	require.NotNil(t, m.Enclen)
	assert.Equal(t, int64(30720), *m.Enclen)
	assert.Equal(t, ".fits", m.Format)
	assert.Len(t, m.Value, 23040)
	assert.Equal(t, payload, m.Value)
}

func TestDecode_EnumStrictness(t *testing.T) {
	dec := NewDecoder(strings.NewReader(
		`<defSwitchVector device="d" name="n" state="Bogus" perm="rw" rule="AtMostOne"></defSwitchVector>`))
	_, err := dec.Next()
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrBadValue, de.Kind)
}

func TestDecode_UnexpectedAttribute(t *testing.T) {
	dec := NewDecoder(strings.NewReader(
		`<getProperties version="1.7" bogus="x"/>`))
	_, err := dec.Next()
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrUnexpectedAttribute, de.Kind)
}

func TestDecode_MissingAttribute(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`<getProperties/>`))
	_, err := dec.Next()
	require.Error(t, err)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrMissingAttribute, de.Kind)
}

func TestDecode_GetPropertiesTolerated(t *testing.T) {
	cmd := decodeOne(t, `<getProperties version="1.7" device="CCD Simulator"/>`)
	gp, ok := cmd.(*GetPropertiesCommand)
	require.True(t, ok)
	assert.Equal(t, "1.7", gp.Version)
	require.NotNil(t, gp.Device)
	assert.Equal(t, "CCD Simulator", *gp.Device)
}

func TestDecode_NewNumberVectorTolerated(t *testing.T) {
	cmd := decodeOne(t, `<newNumberVector device="CCD Simulator" name="Exposure">
  <oneNumber name="seconds">5.0</oneNumber>
</newNumberVector>`)
	nv, ok := cmd.(*NewNumberVectorCommand)
	require.True(t, ok)
	require.Len(t, nv.Numbers, 1)
	assert.Equal(t, 5.0, nv.Numbers[0].Value)
}

func TestDecode_EOFAtStreamEnd(t *testing.T) {
	dec := NewDecoder(strings.NewReader(``))
	_, err := dec.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecode_SexagesimalNumberValue(t *testing.T) {
	cmd := decodeOne(t, `<defNumberVector device="d" name="RA" state="Ok" perm="ro">
  <defNumber name="RA" format="%10.6m" min="0" max="24" step="0">10:30:00</defNumber>
</defNumberVector>`)
	nv, ok := cmd.(*DefNumberVectorCommand)
	require.True(t, ok)
	require.Len(t, nv.Numbers, 1)
	assert.InDelta(t, 10.5, nv.Numbers[0].Value, 1e-9)
}
