// Package model imports mesh assets into the engine's vertex format.
// Currently only collada (.dae) files are supported.
package model

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Collada is the top-level Collada object
type Collada struct {
	Geometries []Geometry `xml:"library_geometries>geometry"`
}

// Geometry represents Collada's geometry
type Geometry struct {
	Mesh ColladaMesh `xml:"mesh"`
	ID   string      `xml:"id,attr"`
	Name string      `xml:"name,attr"`
}

// ColladaMesh contains all the primitive data
type ColladaMesh struct {
	Source    []Source  `xml:"source"`
	Triangles Triangles `xml:"triangles"`
}

// Source links to other sources where data is present
type Source struct {
	ID     string `xml:"id,attr"`
	Floats Floats `xml:"float_array"`
	// technique_common define accessing rules, add if needed
}

// Floats is the array of floats
type Floats struct {
	ID   string
	Data []float32
}

// UnmarshalXML unmarshals the array of floats
func (f *Floats) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			f.ID = attr.Value
		}
	}
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, r := range strings.Fields(raw) {
		num, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return err
		}
		f.Data = append(f.Data, float32(num))
	}
	return nil
}

// Triangles is the triangle primitive data
type Triangles struct {
	Count int
	Index []int
}

// UnmarshalXML unmarshals the triangle count and index list
func (t *Triangles) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "count" {
			count, err := strconv.Atoi(attr.Value)
			if err != nil {
				return err
			}
			t.Count = count
		}
	}
	var elem struct {
		Raw string `xml:"p"`
	}
	if err := d.DecodeElement(&elem, &start); err != nil {
		return err
	}
	for _, r := range strings.Fields(elem.Raw) {
		num, err := strconv.Atoi(r)
		if err != nil {
			return err
		}
		t.Index = append(t.Index, num)
	}
	return nil
}
