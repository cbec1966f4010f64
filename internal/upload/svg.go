package upload

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var errUnsafeSVG = errors.New("svg is not allowed")

// svgBlocked are elements that can run script or embed foreign markup.
var svgBlocked = map[string]bool{
	"script":        true,
	"foreignobject": true,
	"iframe":        true,
	"embed":         true,
	"object":        true,
}

// checkSVG accepts a well-formed document with an <svg> root and no script:
// no blocked elements, no on* handlers and no javascript: links.
func checkSVG(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	root := true
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errUnsafeSVG
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if root && name != "svg" {
				return errUnsafeSVG
			}
			root = false
			if svgBlocked[name] {
				return errUnsafeSVG
			}
			for _, a := range t.Attr {
				attr := strings.ToLower(a.Name.Local)
				if strings.HasPrefix(attr, "on") {
					return errUnsafeSVG
				}
				if attr == "href" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Value)), "javascript:") {
					return errUnsafeSVG
				}
			}
		case xml.Directive:
			// DOCTYPE can declare entities
			return errUnsafeSVG
		}
	}
	if root {
		return errUnsafeSVG
	}
	return nil
}
