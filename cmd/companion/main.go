// Package main provides the companion CLI for device permissions and guarded
// mount connections against a NINA instance.
package main

func main() {
	Execute()
}
