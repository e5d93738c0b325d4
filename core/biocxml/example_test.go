package biocxml_test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/FocuswithJustin/bioc/core/bioc"
	"github.com/FocuswithJustin/bioc/core/biocxml"
)

// Example demonstrates reading a collection one document at a time
func ExampleDocumentReader() {
	const in = `<collection><source>PubMed</source><date>20240101</date><key>k</key>
<document><id>1</id><passage><offset>0</offset><text>Raf-1 binds MEK1.</text></passage></document>
<document><id>2</id></document>
</collection>`

	dr, err := biocxml.NewDocumentReader(strings.NewReader(in))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer dr.Close()

	source, _ := dr.CollectionInfo().Source()
	fmt.Println("source:", source)
	for {
		doc, err := dr.ReadDocument()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println(err)
			return
		}
		id, _ := doc.ID()
		fmt.Printf("document %s: %d passages\n", id, doc.PassageCount())
	}

	// Output:
	// source: PubMed
	// document 1: 1 passages
	// document 2: 0 passages
}

// Example demonstrates streaming documents through a writer
func ExampleWriter() {
	// Hide Close so the writer leaves stdout open.
	stdout := struct{ io.Writer }{os.Stdout}
	w := biocxml.NewWriter(stdout, biocxml.WithIndent("", " "))
	w.SetStandalone(false)
	if err := w.WriteCollectionInfo(bioc.NewCollection("src", "2024", "k")); err != nil {
		fmt.Println(err)
		return
	}

	doc := bioc.NewDocument("1")
	p := bioc.NewPassage(0)
	p.SetText("Hi")
	doc.AddPassage(p)
	if err := w.WriteDocument(doc); err != nil {
		fmt.Println(err)
		return
	}
	if err := w.Close(); err != nil {
		fmt.Println(err)
	}

	// Output:
	// <?xml version="1.0" encoding="UTF-8"?>
	// <collection>
	//  <source>src</source>
	//  <date>2024</date>
	//  <key>k</key>
	//  <document>
	//   <id>1</id>
	//   <passage>
	//    <offset>0</offset>
	//    <text>Hi</text>
	//   </passage>
	//  </document>
	// </collection>
}
