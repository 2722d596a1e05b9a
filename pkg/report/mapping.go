package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/goldfinchbio/aws-gatk-sv/pkg/models"
)

// LoadModuleMapping reads the static job name to pipeline module mapping
// CSV. The expected columns are job_name, module_name, module_number and
// main_module_name, in any order, named in a header row.
func LoadModuleMapping(path string) (models.ModuleMapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening module mapping")
	}
	defer file.Close()

	return ReadModuleMapping(file)
}

// ReadModuleMapping parses a module mapping from CSV content.
func ReadModuleMapping(r io.Reader) (models.ModuleMapping, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading module mapping header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, required := range []string{"job_name", "module_name", "module_number", "main_module_name"} {
		if _, ok := columns[required]; !ok {
			return nil, errors.Errorf("module mapping is missing the %q column", required)
		}
	}

	mapping := make(models.ModuleMapping)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return mapping, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading module mapping row")
		}

		moduleNumber, err := strconv.Atoi(row[columns["module_number"]])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing module_number for job %q", row[columns["job_name"]])
		}

		mapping[row[columns["job_name"]]] = models.ModuleInfo{
			ModuleName:     row[columns["module_name"]],
			ModuleNumber:   moduleNumber,
			MainModuleName: row[columns["main_module_name"]],
		}
	}
}
