package main

import (
	"fmt"

	"github.com/FocuswithJustin/bioc/core/xml"
)

// QueryCmd evaluates an XPath expression against a whole BioC file.
type QueryCmd struct {
	File  string `arg:"" help:"BioC file" type:"existingfile"`
	Expr  string `arg:"" help:"XPath expression, e.g. //annotation[infon[@key='type']='gene']/text"`
	Count bool   `name:"count" help:"Print the number of matches only"`
	XML   bool   `name:"xml" help:"Print matched elements and attributes as XML instead of their text"`
}

func (c *QueryCmd) Run(env *Env) error {
	doc, err := xml.ParseFile(c.File)
	if err != nil {
		return err
	}

	if c.Count {
		n, err := doc.Count(c.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, n)
		return nil
	}

	res, err := doc.Evaluate(c.Expr)
	if err != nil {
		return err
	}
	nodes, ok := res.([]*xml.Node)
	if !ok {
		fmt.Fprintln(env.Out, res)
		return nil
	}
	for _, n := range nodes {
		if c.XML && (n.IsElement() || n.IsAttribute()) {
			fmt.Fprintln(env.Out, n.OuterXML())
			continue
		}
		fmt.Fprintln(env.Out, n.Text())
	}
	return nil
}
