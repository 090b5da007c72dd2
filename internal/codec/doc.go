// Package codec converts between kiosk.Configuration and the Windows
// Assigned Access configuration document.
//
// Encode is pure and deterministic. It writes the 2017 default namespace
// plus the rs5, v3, v4 and v5 extension namespaces with their conventional
// prefixes, four-space indentation and LF line endings.
//
// Decode accepts documents written by Encode and by other tools. Versioned
// attributes are matched by namespace first, then by the conventional
// prefix, then unqualified, so documents that only use prefixes or older
// unqualified attributes still import. The only hard failures are
// unparsable text and a root element other than AssignedAccessConfiguration;
// everything else is best effort and reported in Result.Warnings.
//
// Usage:
//
//	xml := codec.Encode(cfg)
//
//	res, err := codec.Decode(xml)
//	if err != nil {
//	    return err
//	}
//	for _, w := range res.Warnings {
//	    fmt.Println(w)
//	}
package codec
