package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/couriersim/core/model"
)

// DATFileName derives the summary file name from a date token by dropping
// every '/' and appending ".dat": "12/03/2024" becomes "12032024.dat".
func DATFileName(date string) string {
	return strings.ReplaceAll(date, "/", "") + ".dat"
}

// WriteDAT writes the seven "Label: value" lines of a day summary. Money is
// printed with at most six significant digits.
func WriteDAT(w io.Writer, st model.DailyStats) error {
	lines := []struct {
		label string
		value string
	}{
		{"Total deliveries", strconv.Itoa(st.Deliveries)},
		{"Total money", money(st.Revenue)},
		{"Bicycle deliveries", strconv.Itoa(st.Bicycle.Deliveries)},
		{"Bicycle money", money(st.Bicycle.Revenue)},
		{"Moped deliveries", strconv.Itoa(st.Moped.Deliveries)},
		{"Moped money", money(st.Moped.Revenue)},
		{"Missed orders", strconv.Itoa(st.Missed)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s: %s\n", l.label, l.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteDATFile writes the summary of date into dir and returns the file path.
func WriteDATFile(dir, date string, st model.DailyStats) (string, error) {
	if date == "" {
		return "", fmt.Errorf("export: empty date")
	}
	path := filepath.Join(dir, DATFileName(date))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteDAT(f, st); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
