// Package catalog holds the configurable name sets the feature engine counts
// occurrences of. Changing a catalog changes the feature schema, not the
// extraction logic.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the full configuration of the feature engine: the HTML names the
// extractor counts and the JavaScript identifier names the analyzer buckets.
type Catalog struct {
	// Tags are HTML tag names counted per document.
	Tags []string `yaml:"tags"`
	// Attrs are HTML attribute names counted per document (presence only).
	Attrs []string `yaml:"attrs"`
	// EventHandlerAttrs are attribute names whose values are executable
	// JavaScript. They are counted like Attrs and their values become
	// fragments.
	EventHandlerAttrs []string `yaml:"event_handler_attrs"`
	// DomObjects, Properties and Methods classify JavaScript identifier
	// tokens. A name present in more than one set is counted under the
	// first matching set, in this order.
	DomObjects []string `yaml:"dom_objects"`
	Properties []string `yaml:"properties"`
	Methods    []string `yaml:"methods"`
}

// Default returns the catalog the original xssed/randomwalk dataset was
// built with. "windows" is kept verbatim from that dataset's schema.
func Default() *Catalog {
	return &Catalog{
		Tags: []string{
			"script", "iframe", "meta", "div", "applet", "object",
			"embed", "link", "svg",
		},
		Attrs: []string{"href", "http-equiv", "lowsrc"},
		EventHandlerAttrs: []string{
			"onabort", "onactivate", "onafterprint", "onafterupdate",
			"onbeforeactivate", "onbeforecopy", "onbeforecut",
			"onbeforedeactivate", "onbeforeeditfocus", "onbeforepaste",
			"onbeforeprint", "onbeforeunload", "onbeforeupdate", "onblur",
			"onbounce", "oncellchange", "onchange", "onclick",
			"oncontextmenu", "oncontrolselect", "oncopy", "oncut",
			"ondataavailable", "ondatasetchanged", "ondatasetcomplete",
			"ondblclick", "ondeactivate", "ondrag", "ondragend",
			"ondragenter", "ondragleave", "ondragover", "ondragstart",
			"ondrop", "onerror", "onerrorupdate", "onfilterchange",
			"onfinish", "onfocus", "onfocusin", "onfocusout",
			"onhashchange", "onhelp", "oninput", "onkeydown", "onkeypress",
			"onkeyup", "onload", "onlosecapture", "onmessage",
			"onmousedown", "onmouseenter", "onmouseleave", "onmousemove",
			"onmouseout", "onmouseover", "onmouseup", "onmousewheel",
			"onmove", "onmoveend", "onmovestart", "onoffline", "ononline",
			"onpaste", "onpropertychange", "onreadystatechange", "onreset",
			"onresize", "onresizeend", "onresizestart", "onrowenter",
			"onrowexit", "onrowsdelete", "onrowsinserted", "onscroll",
			"onsearch", "onselect", "onselectionchange", "onselectstart",
			"onstart", "onstop", "onsubmit", "onunload",
		},
		DomObjects: []string{"windows", "location", "document"},
		Properties: []string{"cookie", "document", "referrer"},
		Methods: []string{
			"write", "getElementsByTagName", "alert", "eval",
			"fromCharCode", "prompt", "confirm",
		},
	}
}

// Load reads a YAML catalog file. Sets present in the file replace the
// corresponding defaults; absent sets keep them.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var overlay Catalog
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	c := Default()
	if overlay.Tags != nil {
		c.Tags = overlay.Tags
	}
	if overlay.Attrs != nil {
		c.Attrs = overlay.Attrs
	}
	if overlay.EventHandlerAttrs != nil {
		c.EventHandlerAttrs = overlay.EventHandlerAttrs
	}
	if overlay.DomObjects != nil {
		c.DomObjects = overlay.DomObjects
	}
	if overlay.Properties != nil {
		c.Properties = overlay.Properties
	}
	if overlay.Methods != nil {
		c.Methods = overlay.Methods
	}
	return c, nil
}

// Schema returns the canonical column order for a page feature record built
// against this catalog. The order is fixed so CSV output needs no
// schema-discovery pass.
func (c *Catalog) Schema() []string {
	cols := make([]string, 0, 32+len(c.Tags)+len(c.Attrs)+len(c.EventHandlerAttrs)+
		len(c.DomObjects)+len(c.Properties)+len(c.Methods))
	cols = append(cols, "class")
	cols = append(cols,
		"url_length", "url_duplicated_characters", "url_special_characters",
		"url_script_tag", "url_cookie", "url_redirection",
		"url_number_keywords", "url_number_domain",
	)
	for _, tag := range c.Tags {
		cols = append(cols, "html_tag_"+tag)
	}
	for _, attr := range c.Attrs {
		cols = append(cols, "html_attr_"+attr)
	}
	for _, event := range c.EventHandlerAttrs {
		cols = append(cols, "html_event_"+event)
	}
	cols = append(cols, "js_file")
	for _, dom := range c.DomObjects {
		cols = append(cols, "js_dom_"+dom)
	}
	for _, prop := range c.Properties {
		cols = append(cols, "js_prop_"+prop)
	}
	for _, method := range c.Methods {
		cols = append(cols, "js_method_"+method)
	}
	cols = append(cols,
		"js_min_length", "js_min_define_function", "js_min_function_calls",
		"js_string_max_length", "html_length",
	)
	return cols
}
