// Package main provides the entry point for the docscrape CLI.
//
// docscrape crawls documentation sites and reports on the pages it found
// and the links its URL validation engine rejected.
//
// Usage:
//
//	docscrape crawl https://docs.example.com/
//	docscrape check https://docs.example.com/
//
// See --help for all available options.
package main

// main is the entry point for docscrape.
func main() {
	Execute()
}
