// Package alumnidex is a chat-driven alumni directory search library.
//
// A Client answers free-text messages such as "web developers in pune" with
// a short ranked list of matching alumni and pages through the rest on "more".
//
//	c, err := alumnidex.New(alumnidex.WithEmbedded(""))
//	if err != nil { ... }
//	defer c.Close()
//	reply := c.Search(ctx, "user@example.org", "lawyers in delhi")
package alumnidex
