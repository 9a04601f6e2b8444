package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// parseSelection turns user input like "1,3-5" or "all" into zero-based
// indexes into a list of n items. Indexes are returned sorted and
// deduplicated; out-of-range or malformed tokens are errors.
func parseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty selection")
	}
	if strings.EqualFold(input, "all") {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lo, hi, err := parseRange(token)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > n {
			return nil, fmt.Errorf("selection %q out of range 1-%d", token, n)
		}
		for i := lo; i <= hi; i++ {
			seen[i-1] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("empty selection")
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out, nil
}

func parseRange(token string) (lo, hi int, err error) {
	if before, after, found := strings.Cut(token, "-"); found {
		lo, err = strconv.Atoi(strings.TrimSpace(before))
		if err == nil {
			hi, err = strconv.Atoi(strings.TrimSpace(after))
		}
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q", token)
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("invalid range %q", token)
		}
		return lo, hi, nil
	}
	lo, err = strconv.Atoi(token)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection %q", token)
	}
	return lo, lo, nil
}

// promptSelection lists the recordings on w and reads a selection from
// r, returning the chosen subset in list order.
func promptSelection(r io.Reader, w io.Writer, recordings []plaud.Recording) ([]plaud.Recording, error) {
	for i, rec := range recordings {
		fmt.Fprintf(w, "%3d. %s\n", i+1, rec.DisplayLine())
	}
	fmt.Fprint(w, "Select recordings (e.g. 1,3-5 or all): ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("read selection: %w", err)
	}

	indexes, err := parseSelection(line, len(recordings))
	if err != nil {
		return nil, err
	}

	picked := make([]plaud.Recording, 0, len(indexes))
	for _, i := range indexes {
		picked = append(picked, recordings[i])
	}
	return picked, nil
}
