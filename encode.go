package indiclient

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Encoder writes Commands to a byte sink as well-formed, two-space
// indented XML elements, flushing after each one so the peer sees
// message boundaries promptly (spec §4.A.3).
type Encoder struct {
	bw *bufio.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}
	return &Encoder{bw: bw}
}

// Encode writes cmd to the sink and flushes.
func (e *Encoder) Encode(cmd Command) error {
	xe := xml.NewEncoder(e.bw)
	xe.Indent("", "  ")

	if err := writeCommand(xe, cmd); err != nil {
		return err
	}
	if err := xe.Flush(); err != nil {
		return err
	}
	return e.bw.Flush()
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func startElement(name string, attrs ...xml.Attr) xml.StartElement {
	var filtered []xml.Attr
	for _, a := range attrs {
		if a.Name.Local != "" {
			filtered = append(filtered, a)
		}
	}
	return xml.StartElement{Name: xml.Name{Local: name}, Attr: filtered}
}

func writeText(xe *xml.Encoder, se xml.StartElement, text string) error {
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	if text != "" {
		if err := xe.EncodeToken(xml.CharData([]byte(text))); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func optAttr(name string, v *string) xml.Attr {
	if v == nil {
		return xml.Attr{}
	}
	return attr(name, *v)
}

func intAttr(name string, v *int) xml.Attr {
	if v == nil {
		return xml.Attr{}
	}
	return attr(name, strconv.Itoa(*v))
}

func timestampAttr(name string, t *time.Time) xml.Attr {
	if t == nil {
		return xml.Attr{}
	}
	return attr(name, formatTimestamp(*t))
}

// formatTimestamp renders t the way the wire expects: ISO-8601 without a
// zone suffix, UTC. This is the inverse of parseTimestamp, which appends
// "Z" before parsing.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999")
}

func writeCommand(xe *xml.Encoder, cmd Command) error {
	switch c := cmd.(type) {
	case *GetPropertiesCommand:
		return encodeGetProperties(xe, c)
	case *MessageCommand:
		return encodeMessage(xe, c)
	case *DelPropertyCommand:
		return encodeDelProperty(xe, c)
	case *EnableBlobCommand:
		return encodeEnableBlob(xe, c)
	case *DefTextVectorCommand:
		return encodeDefTextVector(xe, c)
	case *DefNumberVectorCommand:
		return encodeDefNumberVector(xe, c)
	case *DefSwitchVectorCommand:
		return encodeDefSwitchVector(xe, c)
	case *DefLightVectorCommand:
		return encodeDefLightVector(xe, c)
	case *DefBlobVectorCommand:
		return encodeDefBlobVector(xe, c)
	case *SetTextVectorCommand:
		return encodeSetTextVector(xe, c)
	case *SetNumberVectorCommand:
		return encodeSetNumberVector(xe, c)
	case *SetSwitchVectorCommand:
		return encodeSetSwitchVector(xe, c)
	case *SetLightVectorCommand:
		return encodeSetLightVector(xe, c)
	case *SetBlobVectorCommand:
		return encodeSetBlobVector(xe, c)
	case *NewTextVectorCommand:
		return encodeNewTextVector(xe, c)
	case *NewNumberVectorCommand:
		return encodeNewNumberVector(xe, c)
	case *NewSwitchVectorCommand:
		return encodeNewSwitchVector(xe, c)
	case *NewBlobVectorCommand:
		return encodeNewBlobVector(xe, c)
	default:
		return fmt.Errorf("indiclient: encode: unsupported command type %T", cmd)
	}
}

func encodeGetProperties(xe *xml.Encoder, c *GetPropertiesCommand) error {
	se := startElement("getProperties",
		attr("version", c.Version),
		optAttr("device", c.Device),
		optAttr("name", c.Name),
	)
	return writeText(xe, se, "")
}

func encodeMessage(xe *xml.Encoder, c *MessageCommand) error {
	se := startElement("message",
		optAttr("device", c.Device),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	return writeText(xe, se, "")
}

func encodeDelProperty(xe *xml.Encoder, c *DelPropertyCommand) error {
	se := startElement("delProperty",
		attr("device", c.Device),
		optAttr("name", c.Name),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	return writeText(xe, se, "")
}

func encodeEnableBlob(xe *xml.Encoder, c *EnableBlobCommand) error {
	se := startElement("enableBLOB",
		attr("device", c.Device),
		optAttr("name", c.Name),
	)
	return writeText(xe, se, string(c.Value))
}

func encodeDefTextVector(xe *xml.Encoder, c *DefTextVectorCommand) error {
	se := startElement("defTextVector",
		attr("device", c.Device),
		attr("name", c.Name),
		optAttr("label", c.Label),
		optAttr("group", c.Group),
		attr("state", string(c.State)),
		attr("perm", string(c.Perm)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Texts {
		cse := startElement("defText", attr("name", m.Name), optAttr("label", m.Label))
		if err := writeText(xe, cse, m.Value); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeDefNumberVector(xe *xml.Encoder, c *DefNumberVectorCommand) error {
	se := startElement("defNumberVector",
		attr("device", c.Device),
		attr("name", c.Name),
		optAttr("label", c.Label),
		optAttr("group", c.Group),
		attr("state", string(c.State)),
		attr("perm", string(c.Perm)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Numbers {
		cse := startElement("defNumber",
			attr("name", m.Name),
			optAttr("label", m.Label),
			attr("format", m.Format),
			attr("min", formatIndiFloat(m.Min)),
			attr("max", formatIndiFloat(m.Max)),
			attr("step", formatIndiFloat(m.Step)),
		)
		if err := writeText(xe, cse, formatIndiFloat(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeDefSwitchVector(xe *xml.Encoder, c *DefSwitchVectorCommand) error {
	se := startElement("defSwitchVector",
		attr("device", c.Device),
		attr("name", c.Name),
		optAttr("label", c.Label),
		optAttr("group", c.Group),
		attr("state", string(c.State)),
		attr("perm", string(c.Perm)),
		attr("rule", string(c.Rule)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Switches {
		cse := startElement("defSwitch", attr("name", m.Name), optAttr("label", m.Label))
		if err := writeText(xe, cse, string(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeDefLightVector(xe *xml.Encoder, c *DefLightVectorCommand) error {
	se := startElement("defLightVector",
		attr("device", c.Device),
		attr("name", c.Name),
		optAttr("label", c.Label),
		optAttr("group", c.Group),
		attr("state", string(c.State)),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Lights {
		cse := startElement("defLight", attr("name", m.Name), optAttr("label", m.Label))
		if err := writeText(xe, cse, string(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeDefBlobVector(xe *xml.Encoder, c *DefBlobVectorCommand) error {
	se := startElement("defBLOBVector",
		attr("device", c.Device),
		attr("name", c.Name),
		optAttr("label", c.Label),
		optAttr("group", c.Group),
		attr("state", string(c.State)),
		attr("perm", string(c.Perm)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Blobs {
		cse := startElement("defBLOB", attr("name", m.Name), optAttr("label", m.Label))
		if err := writeText(xe, cse, ""); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeSetTextVector(xe *xml.Encoder, c *SetTextVectorCommand) error {
	se := startElement("setTextVector",
		attr("device", c.Device),
		attr("name", c.Name),
		attr("state", string(c.State)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Texts {
		cse := startElement("oneText", attr("name", m.Name))
		if err := writeText(xe, cse, m.Value); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeSetNumberVector(xe *xml.Encoder, c *SetNumberVectorCommand) error {
	se := startElement("setNumberVector",
		attr("device", c.Device),
		attr("name", c.Name),
		attr("state", string(c.State)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Numbers {
		var attrs []xml.Attr
		attrs = append(attrs, attr("name", m.Name))
		if m.Min != nil {
			attrs = append(attrs, attr("min", formatIndiFloat(*m.Min)))
		}
		if m.Max != nil {
			attrs = append(attrs, attr("max", formatIndiFloat(*m.Max)))
		}
		if m.Step != nil {
			attrs = append(attrs, attr("step", formatIndiFloat(*m.Step)))
		}
		cse := startElement("oneNumber", attrs...)
		if err := writeText(xe, cse, formatIndiFloat(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeSetSwitchVector(xe *xml.Encoder, c *SetSwitchVectorCommand) error {
	se := startElement("setSwitchVector",
		attr("device", c.Device),
		attr("name", c.Name),
		attr("state", string(c.State)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Switches {
		cse := startElement("oneSwitch", attr("name", m.Name))
		if err := writeText(xe, cse, string(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeSetLightVector(xe *xml.Encoder, c *SetLightVectorCommand) error {
	se := startElement("setLightVector",
		attr("device", c.Device),
		attr("name", c.Name),
		attr("state", string(c.State)),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Lights {
		cse := startElement("oneLight", attr("name", m.Name))
		if err := writeText(xe, cse, string(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeSetBlobVector(xe *xml.Encoder, c *SetBlobVectorCommand) error {
	se := startElement("setBLOBVector",
		attr("device", c.Device),
		attr("name", c.Name),
		attr("state", string(c.State)),
		intAttr("timeout", c.Timeout),
		timestampAttr("timestamp", c.Timestamp),
		optAttr("message", c.Message),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Blobs {
		if err := writeOneBlob(xe, m); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeNewTextVector(xe *xml.Encoder, c *NewTextVectorCommand) error {
	se := startElement("newTextVector",
		attr("device", c.Device),
		attr("name", c.Name),
		timestampAttr("timestamp", c.Timestamp),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Texts {
		cse := startElement("oneText", attr("name", m.Name))
		if err := writeText(xe, cse, m.Value); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeNewNumberVector(xe *xml.Encoder, c *NewNumberVectorCommand) error {
	se := startElement("newNumberVector",
		attr("device", c.Device),
		attr("name", c.Name),
		timestampAttr("timestamp", c.Timestamp),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Numbers {
		cse := startElement("oneNumber", attr("name", m.Name))
		if err := writeText(xe, cse, formatIndiFloat(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeNewSwitchVector(xe *xml.Encoder, c *NewSwitchVectorCommand) error {
	se := startElement("newSwitchVector",
		attr("device", c.Device),
		attr("name", c.Name),
		timestampAttr("timestamp", c.Timestamp),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Switches {
		cse := startElement("oneSwitch", attr("name", m.Name))
		if err := writeText(xe, cse, string(m.Value)); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func encodeNewBlobVector(xe *xml.Encoder, c *NewBlobVectorCommand) error {
	se := startElement("newBLOBVector",
		attr("device", c.Device),
		attr("name", c.Name),
		timestampAttr("timestamp", c.Timestamp),
	)
	if err := xe.EncodeToken(se); err != nil {
		return err
	}
	for _, m := range c.Blobs {
		if err := writeOneBlob(xe, m); err != nil {
			return err
		}
	}
	return xe.EncodeToken(se.End())
}

func writeOneBlob(xe *xml.Encoder, m OneBlobMember) error {
	attrs := []xml.Attr{
		attr("name", m.Name),
		attr("size", strconv.FormatInt(m.Size, 10)),
		attr("format", m.Format),
	}
	if m.Enclen != nil {
		attrs = append(attrs, attr("enclen", strconv.FormatInt(*m.Enclen, 10)))
	}
	cse := startElement("oneBLOB", attrs...)
	return writeText(xe, cse, base64.StdEncoding.EncodeToString(m.Value))
}
