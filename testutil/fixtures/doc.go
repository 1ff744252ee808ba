// Package fixtures provides library states, loans and dates shared by the package tests.
package fixtures
