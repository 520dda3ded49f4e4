package indiclient

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// DecoderOptions configures a Decoder's tolerance for non-conforming input.
type DecoderOptions struct {
	// Strict enforces the enumeration and attribute-schema checks of the
	// wire codec. It is always effectively true in this implementation:
	// the schemas are part of the protocol's shape, not a style nit. The
	// field is kept, defaulting true, so callers can name their intent
	// and a future relaxed mode has somewhere to hang off.
	Strict bool

	// ErrorOnSizeMismatch makes a oneBLOB whose decoded length disagrees
	// with its size attribute a hard decode error instead of a silent
	// acceptance of the decoded bytes.
	ErrorOnSizeMismatch bool

	// MaxBlobBytes bounds the size attribute indiclient will allocate for
	// ahead of time. Zero means unbounded.
	MaxBlobBytes int64
}

// DefaultDecoderOptions returns the options a Decoder uses when none are given.
func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{Strict: true}
}

// Decoder pulls one Command at a time from an XML element stream. It is
// not safe for concurrent use; only one goroutine may drive it.
type Decoder struct {
	xd     *xml.Decoder
	opts   DecoderOptions
	failed bool
}

// NewDecoder returns a Decoder reading from r with default options.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderWithOptions(r, DefaultDecoderOptions())
}

// NewDecoderWithOptions returns a Decoder reading from r with the given options.
func NewDecoderWithOptions(r io.Reader, opts DecoderOptions) *Decoder {
	xd := xml.NewDecoder(r)
	xd.Strict = true
	return &Decoder{xd: xd, opts: opts}
}

// Next advances the decoder by exactly one top-level element and returns
// its decoded Command. It returns (nil, io.EOF) on a clean end of stream
// between messages. Once it returns a non-EOF error, every subsequent
// call returns (nil, io.EOF), since the underlying XML tokenizer's state
// is no longer trustworthy. See spec
// §7: decode errors are per-message and the decoder does not attempt
// resynchronization.
func (d *Decoder) Next() (Command, error) {
	if d.failed {
		return nil, io.EOF
	}

	for {
		tok, err := d.xd.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			d.failed = true
			return nil, wrapDecodeErr(ErrXML, "", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			// Whitespace, comments, and processing instructions between
			// top-level elements are insignificant.
			continue
		}

		cmd, derr := d.decodeElement(se)
		if derr != nil {
			d.failed = true
			return nil, derr
		}
		return cmd, nil
	}
}

// decodeElement returns a concrete *DecodeError (rather than the error
// interface) so that every call site below can propagate it with a plain
// `return ..., derr` without the nil-pointer-in-non-nil-interface trap of
// converting a nil *DecodeError to error at each intermediate return.
func (d *Decoder) decodeElement(se xml.StartElement) (Command, *DecodeError) {
	switch se.Name.Local {
	case "getProperties":
		return decodeGetProperties(se)
	case "message":
		return decodeMessage(se)
	case "delProperty":
		return decodeDelProperty(se)
	case "enableBLOB":
		return d.decodeEnableBlob(se)
	case "defTextVector":
		return d.decodeDefTextVector(se)
	case "defNumberVector":
		return d.decodeDefNumberVector(se)
	case "defSwitchVector":
		return d.decodeDefSwitchVector(se)
	case "defLightVector":
		return d.decodeDefLightVector(se)
	case "defBLOBVector":
		return d.decodeDefBlobVector(se)
	case "setTextVector":
		return d.decodeSetTextVector(se)
	case "setNumberVector":
		return d.decodeSetNumberVector(se)
	case "setSwitchVector":
		return d.decodeSetSwitchVector(se)
	case "setLightVector":
		return d.decodeSetLightVector(se)
	case "setBLOBVector":
		return d.decodeSetBlobVector(se)
	case "newTextVector":
		return d.decodeNewTextVector(se)
	case "newNumberVector":
		return d.decodeNewNumberVector(se)
	case "newSwitchVector":
		return d.decodeNewSwitchVector(se)
	case "newBLOBVector":
		return d.decodeNewBlobVector(se)
	default:
		// Per spec §7, a malformed/unknown top-level element is a hard
		// decode error, not a silent skip. The element is not consumed;
		// Next reports io.EOF from here on.
		return nil, newDecodeErr(ErrUnexpectedTag, se.Name.Local)
	}
}

// ---- attribute helpers ----

func attrSet(se xml.StartElement, required, optional []string) (map[string]string, *DecodeError) {
	allowed := make(map[string]bool, len(required)+len(optional))
	for _, a := range required {
		allowed[a] = true
	}
	for _, a := range optional {
		allowed[a] = true
	}

	m := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		if !allowed[a.Name.Local] {
			return nil, newDecodeErr(ErrUnexpectedAttribute, a.Name.Local)
		}
		m[a.Name.Local] = a.Value
	}

	for _, a := range required {
		if _, ok := m[a]; !ok {
			return nil, newDecodeErr(ErrMissingAttribute, a)
		}
	}

	return m, nil
}

func optStrPtr(m map[string]string, key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}

func parseIntAttr(m map[string]string, key string) (*int, *DecodeError) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return nil, wrapDecodeErr(ErrBadInteger, key, err)
	}
	return &n, nil
}

func parseInt64Attr(m map[string]string, key string, required bool) (int64, bool, *DecodeError) {
	v, ok := m[key]
	if !ok {
		if required {
			return 0, false, newDecodeErr(ErrMissingAttribute, key)
		}
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, false, wrapDecodeErr(ErrBadInteger, key, err)
	}
	return n, true, nil
}

func parseFloatAttr(m map[string]string, key string) (float64, *DecodeError) {
	v := m[key]
	f, ok := parseIndiFloat(v)
	if !ok {
		return 0, newDecodeErr(ErrBadFloat, key)
	}
	return f, nil
}

func parseOptFloatAttr(m map[string]string, key string) (*float64, *DecodeError) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	f, ok := parseIndiFloat(v)
	if !ok {
		return nil, newDecodeErr(ErrBadFloat, key)
	}
	return &f, nil
}

func parseTimestampAttr(m map[string]string, key string) (*time.Time, *DecodeError) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	t, err := parseTimestamp(v)
	if err != nil {
		return nil, wrapDecodeErr(ErrBadTimestamp, key, err)
	}
	return &t, nil
}

func parseTimestamp(s string) (time.Time, error) {
	const layout = "2006-01-02T15:04:05.999999999Z"
	t, err := time.Parse(layout, s+"Z")
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parsePropertyState(v string) (PropertyState, *DecodeError) {
	s := PropertyState(v)
	if !s.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return s, nil
}

func parsePropertyPerm(v string) (PropertyPerm, *DecodeError) {
	p := PropertyPerm(v)
	if !p.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return p, nil
}

func parseSwitchRule(v string) (SwitchRule, *DecodeError) {
	r := SwitchRule(v)
	if !r.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return r, nil
}

func parseSwitchStateText(v string) (SwitchState, *DecodeError) {
	s := SwitchState(strings.TrimSpace(v))
	if !s.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return s, nil
}

func parsePropertyStateText(v string) (PropertyState, *DecodeError) {
	s := PropertyState(strings.TrimSpace(v))
	if !s.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return s, nil
}

func parseBlobEnable(v string) (BlobEnable, *DecodeError) {
	b := BlobEnable(strings.TrimSpace(v))
	if !b.valid() {
		return "", newDecodeErr(ErrBadValue, v)
	}
	return b, nil
}

// ---- text and child-element reading ----

// readText consumes character data up to (and including) the matching end
// element and returns the concatenated text. It is the Go translation of
// the child sub-iterator sharing its parent's reader: readText and
// loopChildren both pull straight from the Decoder's single xml.Decoder,
// never opening a second one.
func (d *Decoder) readText() (string, *DecodeError) {
	var sb strings.Builder
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return "", wrapDecodeErr(ErrXML, "", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return sb.String(), nil
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		default:
			return "", newDecodeErr(ErrUnexpectedEvent, fmt.Sprintf("%T", tok))
		}
	}
}

// loopChildren reads child elements named childTag until the parent's
// closing tag, invoking parse for each one. It is the shared engine
// behind every defXxxVector/setXxxVector member list.
func (d *Decoder) loopChildren(childTag string, parse func(xml.StartElement) *DecodeError) *DecodeError {
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return wrapDecodeErr(ErrXML, "", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if t.Name.Local != childTag {
				return newDecodeErr(ErrUnexpectedTag, t.Name.Local)
			}
			if derr := parse(t); derr != nil {
				return derr
			}
		case xml.CharData:
			continue
		default:
			continue
		}
	}
}

// ---- top-level, childless commands ----

func decodeGetProperties(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"version"}, []string{"device", "name"})
	if derr != nil {
		return nil, derr
	}
	return &GetPropertiesCommand{
		Version: m["version"],
		Device:  optStrPtr(m, "device"),
		Name:    optStrPtr(m, "name"),
	}, nil
}

func decodeMessage(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, nil, []string{"device", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	return &MessageCommand{
		Device:    optStrPtr(m, "device"),
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}, nil
}

func decodeDelProperty(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device"}, []string{"name", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	return &DelPropertyCommand{
		Device:    m["device"],
		Name:      optStrPtr(m, "name"),
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}, nil
}

func (d *Decoder) decodeEnableBlob(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device"}, []string{"name"})
	if derr != nil {
		return nil, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return nil, derr
	}
	val, derr := parseBlobEnable(text)
	if derr != nil {
		return nil, derr
	}
	return &EnableBlobCommand{
		Device: m["device"],
		Name:   optStrPtr(m, "name"),
		Value:  val,
	}, nil
}

// ---- def vectors ----

func (d *Decoder) decodeDefTextVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state", "perm"},
		[]string{"label", "group", "timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	perm, derr := parsePropertyPerm(m["perm"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &DefTextVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		Label:     optStrPtr(m, "label"),
		Group:     optStrPtr(m, "group"),
		State:     state,
		Perm:      perm,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("defText", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseDefTextMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Texts = append(cmd.Texts, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseDefTextMember(se xml.StartElement) (DefTextMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, []string{"label"})
	if derr != nil {
		return DefTextMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return DefTextMember{}, derr
	}
	return DefTextMember{
		Name:  m["name"],
		Label: optStrPtr(m, "label"),
		Value: strings.TrimSpace(text),
	}, nil
}

func (d *Decoder) decodeDefNumberVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state", "perm"},
		[]string{"label", "group", "timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	perm, derr := parsePropertyPerm(m["perm"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &DefNumberVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		Label:     optStrPtr(m, "label"),
		Group:     optStrPtr(m, "group"),
		State:     state,
		Perm:      perm,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("defNumber", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseDefNumberMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Numbers = append(cmd.Numbers, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseDefNumberMember(se xml.StartElement) (DefNumberMember, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"name", "format", "min", "max", "step"},
		[]string{"label"})
	if derr != nil {
		return DefNumberMember{}, derr
	}
	min, derr := parseFloatAttr(m, "min")
	if derr != nil {
		return DefNumberMember{}, derr
	}
	max, derr := parseFloatAttr(m, "max")
	if derr != nil {
		return DefNumberMember{}, derr
	}
	step, derr := parseFloatAttr(m, "step")
	if derr != nil {
		return DefNumberMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return DefNumberMember{}, derr
	}
	value, ok := parseIndiFloat(text)
	if !ok {
		return DefNumberMember{}, newDecodeErr(ErrBadFloat, "value")
	}
	return DefNumberMember{
		Name:   m["name"],
		Label:  optStrPtr(m, "label"),
		Format: m["format"],
		Min:    min,
		Max:    max,
		Step:   step,
		Value:  value,
	}, nil
}

func (d *Decoder) decodeDefSwitchVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state", "perm", "rule"},
		[]string{"label", "group", "timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	perm, derr := parsePropertyPerm(m["perm"])
	if derr != nil {
		return nil, derr
	}
	rule, derr := parseSwitchRule(m["rule"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &DefSwitchVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		Label:     optStrPtr(m, "label"),
		Group:     optStrPtr(m, "group"),
		State:     state,
		Perm:      perm,
		Rule:      rule,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("defSwitch", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseDefSwitchMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Switches = append(cmd.Switches, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseDefSwitchMember(se xml.StartElement) (DefSwitchMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, []string{"label"})
	if derr != nil {
		return DefSwitchMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return DefSwitchMember{}, derr
	}
	value, derr := parseSwitchStateText(text)
	if derr != nil {
		return DefSwitchMember{}, derr
	}
	return DefSwitchMember{
		Name:  m["name"],
		Label: optStrPtr(m, "label"),
		Value: value,
	}, nil
}

func (d *Decoder) decodeDefLightVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"label", "group", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &DefLightVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		Label:     optStrPtr(m, "label"),
		Group:     optStrPtr(m, "group"),
		State:     state,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("defLight", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseDefLightMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Lights = append(cmd.Lights, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseDefLightMember(se xml.StartElement) (DefLightMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, []string{"label"})
	if derr != nil {
		return DefLightMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return DefLightMember{}, derr
	}
	value, derr := parsePropertyStateText(text)
	if derr != nil {
		return DefLightMember{}, derr
	}
	return DefLightMember{
		Name:  m["name"],
		Label: optStrPtr(m, "label"),
		Value: value,
	}, nil
}

func (d *Decoder) decodeDefBlobVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state", "perm"},
		[]string{"label", "group", "timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	perm, derr := parsePropertyPerm(m["perm"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &DefBlobVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		Label:     optStrPtr(m, "label"),
		Group:     optStrPtr(m, "group"),
		State:     state,
		Perm:      perm,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("defBLOB", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseDefBlobMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Blobs = append(cmd.Blobs, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseDefBlobMember(se xml.StartElement) (DefBlobMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, []string{"label"})
	if derr != nil {
		return DefBlobMember{}, derr
	}
	// defBLOB carries no value; any body text is read and discarded.
	if _, derr := d.readText(); derr != nil {
		return DefBlobMember{}, derr
	}
	return DefBlobMember{
		Name:  m["name"],
		Label: optStrPtr(m, "label"),
	}, nil
}

// ---- set vectors ----

func (d *Decoder) decodeSetTextVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &SetTextVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		State:     state,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("oneText", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneTextMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Texts = append(cmd.Texts, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseOneTextMember(se xml.StartElement) (OneTextMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, nil)
	if derr != nil {
		return OneTextMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return OneTextMember{}, derr
	}
	return OneTextMember{Name: m["name"], Value: strings.TrimSpace(text)}, nil
}

func (d *Decoder) decodeSetNumberVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &SetNumberVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		State:     state,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("oneNumber", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneNumberMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Numbers = append(cmd.Numbers, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseOneNumberMember(se xml.StartElement) (OneNumberMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, []string{"min", "max", "step"})
	if derr != nil {
		return OneNumberMember{}, derr
	}
	min, derr := parseOptFloatAttr(m, "min")
	if derr != nil {
		return OneNumberMember{}, derr
	}
	max, derr := parseOptFloatAttr(m, "max")
	if derr != nil {
		return OneNumberMember{}, derr
	}
	step, derr := parseOptFloatAttr(m, "step")
	if derr != nil {
		return OneNumberMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return OneNumberMember{}, derr
	}
	value, ok := parseIndiFloat(text)
	if !ok {
		return OneNumberMember{}, newDecodeErr(ErrBadFloat, "value")
	}
	return OneNumberMember{
		Name:  m["name"],
		Min:   min,
		Max:   max,
		Step:  step,
		Value: value,
	}, nil
}

func (d *Decoder) decodeSetSwitchVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &SetSwitchVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		State:     state,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("oneSwitch", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneSwitchMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Switches = append(cmd.Switches, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseOneSwitchMember(se xml.StartElement) (OneSwitchMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, nil)
	if derr != nil {
		return OneSwitchMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return OneSwitchMember{}, derr
	}
	value, derr := parseSwitchStateText(text)
	if derr != nil {
		return OneSwitchMember{}, derr
	}
	return OneSwitchMember{Name: m["name"], Value: value}, nil
}

func (d *Decoder) decodeSetLightVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &SetLightVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		State:     state,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("oneLight", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneLightMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Lights = append(cmd.Lights, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseOneLightMember(se xml.StartElement) (OneLightMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name"}, nil)
	if derr != nil {
		return OneLightMember{}, derr
	}
	text, derr := d.readText()
	if derr != nil {
		return OneLightMember{}, derr
	}
	value, derr := parsePropertyStateText(text)
	if derr != nil {
		return OneLightMember{}, derr
	}
	return OneLightMember{Name: m["name"], Value: value}, nil
}

func (d *Decoder) decodeSetBlobVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se,
		[]string{"device", "name", "state"},
		[]string{"timeout", "timestamp", "message"})
	if derr != nil {
		return nil, derr
	}
	state, derr := parsePropertyState(m["state"])
	if derr != nil {
		return nil, derr
	}
	timeout, derr := parseIntAttr(m, "timeout")
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}

	cmd := &SetBlobVectorCommand{
		Device:    m["device"],
		Name:      m["name"],
		State:     state,
		Timeout:   timeout,
		Timestamp: ts,
		Message:   optStrPtr(m, "message"),
	}

	derr = d.loopChildren("oneBLOB", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneBlobMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Blobs = append(cmd.Blobs, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) parseOneBlobMember(se xml.StartElement) (OneBlobMember, *DecodeError) {
	m, derr := attrSet(se, []string{"name", "size", "format"}, []string{"enclen"})
	if derr != nil {
		return OneBlobMember{}, derr
	}
	size, _, derr := parseInt64Attr(m, "size", true)
	if derr != nil {
		return OneBlobMember{}, derr
	}
	if d.opts.MaxBlobBytes > 0 && size > d.opts.MaxBlobBytes {
		return OneBlobMember{}, newDecodeErr(ErrBadValue, "size exceeds MaxBlobBytes")
	}
	var enclen *int64
	if v, present, derr := parseInt64Attr(m, "enclen", false); derr != nil {
		return OneBlobMember{}, derr
	} else if present {
		enclen = &v
	}

	text, derr := d.readText()
	if derr != nil {
		return OneBlobMember{}, derr
	}
	data, err := decodeBlobBody(text, size)
	if err != nil {
		return OneBlobMember{}, wrapDecodeErr(ErrBadValue, "blob body", err)
	}
	if d.opts.ErrorOnSizeMismatch && int64(len(data)) != size {
		return OneBlobMember{}, newDecodeErr(ErrBadValue, "blob size mismatch")
	}

	return OneBlobMember{
		Name:   m["name"],
		Size:   size,
		Enclen: enclen,
		Format: m["format"],
		Value:  data,
	}, nil
}

// decodeBlobBody strips embedded newlines from base64 BLOB text and
// decodes each resulting segment, concatenating the results into one
// contiguous buffer sized from the size hint. See spec §4.A.1/§8 S8:
// line breaks are a transport artifact, not protocol content.
func decodeBlobBody(text string, size int64) ([]byte, error) {
	buf := make([]byte, 0, size)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := base64.StdEncoding.DecodedLen(len(line))
		tmp := make([]byte, n)
		written, err := base64.StdEncoding.Decode(tmp, []byte(line))
		if err != nil {
			return nil, err
		}
		buf = append(buf, tmp[:written]...)
	}
	return buf, nil
}

// ---- new vectors (client -> server, but tolerated inbound per spec open question) ----

func (d *Decoder) decodeNewTextVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device", "name"}, []string{"timestamp"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	cmd := &NewTextVectorCommand{Device: m["device"], Name: m["name"], Timestamp: ts}
	derr = d.loopChildren("oneText", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneTextMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Texts = append(cmd.Texts, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) decodeNewNumberVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device", "name"}, []string{"timestamp"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	cmd := &NewNumberVectorCommand{Device: m["device"], Name: m["name"], Timestamp: ts}
	derr = d.loopChildren("oneNumber", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneNumberMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Numbers = append(cmd.Numbers, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) decodeNewSwitchVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device", "name"}, []string{"timestamp"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	cmd := &NewSwitchVectorCommand{Device: m["device"], Name: m["name"], Timestamp: ts}
	derr = d.loopChildren("oneSwitch", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneSwitchMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Switches = append(cmd.Switches, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}

func (d *Decoder) decodeNewBlobVector(se xml.StartElement) (Command, *DecodeError) {
	m, derr := attrSet(se, []string{"device", "name"}, []string{"timestamp"})
	if derr != nil {
		return nil, derr
	}
	ts, derr := parseTimestampAttr(m, "timestamp")
	if derr != nil {
		return nil, derr
	}
	cmd := &NewBlobVectorCommand{Device: m["device"], Name: m["name"], Timestamp: ts}
	derr = d.loopChildren("oneBLOB", func(cse xml.StartElement) *DecodeError {
		member, derr := d.parseOneBlobMember(cse)
		if derr != nil {
			return derr
		}
		cmd.Blobs = append(cmd.Blobs, member)
		return nil
	})
	if derr != nil {
		return nil, derr
	}
	return cmd, nil
}
