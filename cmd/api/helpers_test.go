package main

import (
	"testing"

	"covid-dashboard/internal/dataset"
)

const fixturePath = "../../internal/dataset/testdata/patients.csv"

// useDataset points the handlers at a fresh loader for path and restores
// the previous globals when the test ends.
func useDataset(t testing.TB, path string) {
	t.Helper()
	oldLoader, oldFile, oldSource := loader, dataFile, dataSource
	loader = dataset.NewLoader(dataset.NewFileSource(path), nil)
	dataFile, dataSource = path, sourceFile
	t.Cleanup(func() {
		loader, dataFile, dataSource = oldLoader, oldFile, oldSource
	})
}
