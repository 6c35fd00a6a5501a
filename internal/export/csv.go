package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"epi-ca/internal/sims/epidemic"
)

// WriteSeriesCSV writes one row per turn with a column per state.
func WriteSeriesCSV(w io.Writer, s epidemic.Series) error {
	cw := csv.NewWriter(w)
	header := []string{"turn"}
	for _, st := range epidemic.States {
		header = append(header, st.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for turn := 0; turn < s.Len(); turn++ {
		row[0] = strconv.Itoa(turn)
		for i, st := range epidemic.States {
			row[i+1] = strconv.FormatFloat(s.Values(st)[turn], 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeriesFile writes the CSV time series to path.
func WriteSeriesFile(path string, s epidemic.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSeriesCSV(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
