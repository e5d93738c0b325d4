// Package biocxml reads and writes BioC XML as a stream.
//
// A Reader pulls records at a chosen Level: the whole collection, one
// document, one passage or one sentence at a time. Only the record being
// built is held in memory, so arbitrarily large corpora can be processed
// document by document:
//
//	dr, err := biocxml.OpenDocuments("corpus.xml.gz")
//	if err != nil {
//	    return err
//	}
//	defer dr.Close()
//
//	for doc, err := range dr.Documents() {
//	    if err != nil {
//	        return err
//	    }
//	    // process doc
//	}
//
// A Writer mirrors this: WriteCollectionInfo opens the stream, WriteDocument
// appends documents and Close ends the collection. Calls out of order return
// a ProtocolViolationError.
//
// The DOCTYPE declaration of an input stream is kept verbatim (Reader.DTD)
// and can be passed to Writer.SetDTD to reproduce it.
package biocxml
