package coverage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bnb-chain/evmcov/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// GroupStats is the coverage of one opcode group.
type GroupStats struct {
	Group string  `json:"group" yaml:"group"`
	Hits  int     `json:"hits" yaml:"hits"`
	Total int     `json:"total" yaml:"total"`
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// MissedInstruction is an instruction start the trace never reached.
type MissedInstruction struct {
	PC uint64 `json:"pc" yaml:"pc"`
	Op string `json:"op" yaml:"op"`
}

// Report breaks a Result down by opcode group and lists what was missed.
type Report struct {
	CodeHash     string              `json:"codeHash" yaml:"codeHash"`
	CodeSize     int                 `json:"codeSize" yaml:"codeSize"`
	Instructions int                 `json:"instructions" yaml:"instructions"`
	Hits         int                 `json:"hits" yaml:"hits"`
	Coverage     float64             `json:"coverage" yaml:"coverage"`
	TraceEntries int                 `json:"traceEntries" yaml:"traceEntries"`
	Stray        []int64             `json:"stray,omitempty" yaml:"stray,omitempty"`
	Groups       []GroupStats        `json:"groups" yaml:"groups"`
	Missed       []MissedInstruction `json:"missed,omitempty" yaml:"missed,omitempty"`
}

// NewReport builds the report of res, which must have been computed from the
// instruction starts of code under set.
func NewReport(code []byte, set *vm.InstructionSet, res *Result) *Report {
	var (
		hits   = make(map[vm.Group]int)
		totals = make(map[vm.Group]int)
		it     = vm.NewIterator(code, set)
	)
	r := &Report{
		CodeHash:     crypto.Keccak256Hash(code).Hex(),
		CodeSize:     len(code),
		Instructions: res.Total,
		Hits:         res.Hits,
		Coverage:     res.Ratio(),
		TraceEntries: res.Entries,
	}
	if res.StrayCount() > 0 {
		r.Stray = res.Stray()
		sort.Slice(r.Stray, func(i, j int) bool { return r.Stray[i] < r.Stray[j] })
	}

	for it.Next() {
		ins := it.Instruction()
		totals[ins.Group]++
		if res.Hit(ins.PC) {
			hits[ins.Group]++
			continue
		}
		r.Missed = append(r.Missed, MissedInstruction{PC: ins.PC, Op: ins.Op.String()})
	}
	for _, g := range vm.Groups() {
		if totals[g] == 0 {
			continue
		}
		r.Groups = append(r.Groups, GroupStats{
			Group: g.String(),
			Hits:  hits[g],
			Total: totals[g],
			Ratio: float64(hits[g]) / float64(totals[g]),
		})
	}
	return r
}

// WriteTable renders the per-group breakdown as a table.
func (r *Report) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Group", "Hits", "Total", "Coverage"})
	for _, g := range r.Groups {
		table.Append([]string{g.Group, strconv.Itoa(g.Hits), strconv.Itoa(g.Total), formatPercent(g.Ratio)})
	}
	table.SetFooter([]string{"all", strconv.Itoa(r.Hits), strconv.Itoa(r.Instructions), formatPercent(r.Coverage)})
	table.Render()

	if len(r.Stray) > 0 {
		fmt.Fprintf(w, "%d trace entries are not instruction starts\n", len(r.Stray))
	}
}

// WriteMissed lists the instructions the trace never reached.
func (r *Report) WriteMissed(w io.Writer) {
	for _, m := range r.Missed {
		fmt.Fprintf(w, "%05x: %s\n", m.PC, m.Op)
	}
}

// WriteFile exports the report to path, as YAML for .yaml/.yml files and JSON
// otherwise.
func (r *Report) WriteFile(path string) error {
	var (
		out []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = yaml.Marshal(r)
	default:
		out, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 2, 64) + "%"
}

// FormatRatio renders ratio as the shortest decimal that parses back to the
// same value, e.g. "1" or "0.4".
func FormatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}
