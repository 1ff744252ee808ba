package main

import (
	"fmt"
	"io"
	"strings"
)

const (
	companyName = "SoftLib Solutions"
	productName = "EmpréstimoEasy"

	companyHistory = "Founded in 2025 by library enthusiasts and developers, SoftLib Solutions builds " +
		"simple, scalable tools for managing collections and loans. Our mission is to bring " +
		"readers and knowledge closer through accessible technology."

	companyLogo = `
     ,_,
    [0,0]
    |)--)- SoftLib Solutions
    -"-"-
`
)

var staff = []struct{ name, role string }{
	{name: "Mateus de Mattos", role: "Lead Developer"},
	{name: "Kauã Neves", role: "Systems Analyst"},
	{name: "Arthur Santanna", role: "QA Tester"},
}

func printAbout(out io.Writer) {
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(out, rule)
	fmt.Fprint(out, companyLogo)
	fmt.Fprintf(out, "Company: %s\n", companyName)
	fmt.Fprintf(out, "Product: %s\n\n", productName)
	fmt.Fprintln(out, "History:")
	fmt.Fprintln(out, companyHistory)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Staff:")

	for _, member := range staff {
		fmt.Fprintf(out, " - %s: %s\n", member.name, member.role)
	}

	fmt.Fprintln(out, rule)
}
