package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"github.com/getmockd/schemafaker/pkg/generator"
)

// XML layout: a root <items schema="User"> element holding one <User> element
// per instance. Fields become child elements, sequence members become <item>
// elements and absent values carry nil="true". Mapping keys that are not
// valid element names are written as <entry key="...">.
const (
	xmlRoot  = "items"
	xmlItem  = "item"
	xmlEntry = "entry"
)

func writeXML(w io.Writer, schemaName string, items []*generator.Instance) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(xmlRoot)
	elemName := xmlItem
	if schemaName != "" {
		root.CreateAttr("schema", schemaName)
		if validXMLName(schemaName) {
			elemName = schemaName
		}
	}
	for _, in := range items {
		appendInstance(root.CreateElement(elemName), in)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

func appendInstance(el *etree.Element, in *generator.Instance) {
	for _, k := range in.Keys() {
		v, _ := in.Get(k)
		var child *etree.Element
		if validXMLName(k) {
			child = el.CreateElement(k)
		} else {
			child = el.CreateElement(xmlEntry)
			child.CreateAttr("key", k)
		}
		appendValue(child, v)
	}
}

func appendValue(el *etree.Element, v any) {
	switch x := v.(type) {
	case nil:
		el.CreateAttr("nil", "true")
	case *generator.Instance:
		appendInstance(el, x)
	case []any:
		for _, e := range x {
			appendValue(el.CreateElement(xmlItem), e)
		}
	case map[string]any:
		appendInstance(el, generator.FromMap(x, nil))
	case float64:
		el.SetText(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		el.SetText(fmt.Sprint(generator.Plain(x)))
	}
}

// validXMLName reports whether s can be used as an element name as is.
func validXMLName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
