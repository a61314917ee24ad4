package main

import (
	"encoding/json"
	"os"

	"github.com/starius/restclient"
	"github.com/starius/restclient/example"
)

// Writes openapi.json and methods.yaml of the book API.
func main() {
	_, client, err := example.NewBookClient("http://127.0.0.1:8080")
	if err != nil {
		panic(err)
	}

	doc, err := client.OpenAPI("Books", "1.0.0")
	if err != nil {
		panic(err)
	}
	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("openapi.json", docJSON, 0o644); err != nil {
		panic(err)
	}

	f, err := os.Create("methods.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := restclient.WriteMethods(f, example.BookMethods); err != nil {
		panic(err)
	}
}
