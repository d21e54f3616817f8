package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-axisregions/pkg/regions"
	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

func openSession(cmd *cobra.Command, s *service.Service) (*service.Session, error) {
	sess, err := s.Open(cmd.Context(), "")
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// saveSession writes the document and reports the path on stderr.
func saveSession(cmd *cobra.Command, sess *service.Session) error {
	if err := sess.Save(cmd.Context()); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", sess.Path)
	return nil
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// nodeInfo is the JSON view of one tree row.
type nodeInfo struct {
	Path    string   `json:"path"`
	Kind    string   `json:"kind"`
	Label   string   `json:"label"`
	Dim     string   `json:"dim,omitempty"`
	Lower   *float64 `json:"lower,omitempty"`
	Upper   *float64 `json:"upper,omitempty"`
	Movable *bool    `json:"movable,omitempty"`
}

func describe(t *regions.Tree, n *regions.Node) nodeInfo {
	info := nodeInfo{
		Path:  t.Path(n),
		Kind:  n.Kind().String(),
		Label: n.Label(),
	}
	if r := n.Region(); r != nil {
		lower, upper, movable := r.Lower(), r.Upper(), r.IsMovable()
		info.Dim = r.DimValue()
		info.Lower, info.Upper, info.Movable = &lower, &upper, &movable
	}
	return info
}

// renderTree writes one line per node below the root, indented by depth.
func renderTree(w io.Writer, t *regions.Tree) {
	for n := range t.DepthFirst() {
		if n.IsRoot() {
			continue
		}
		depth := 0
		for p := n.Parent(); p != nil && !p.IsRoot(); p = p.Parent() {
			depth++
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), rowText(n))
	}
}

func rowText(n *regions.Node) string {
	if n.IsGroup() {
		return fmt.Sprintf("%s/ (%d)", n.Label(), n.Len())
	}
	r := n.Region()
	line := n.Label()
	if strings.TrimSpace(r.TextValue()) != "" {
		bounds := regions.FormatBound(r.Lower()) + "-" + regions.FormatBound(r.Upper())
		if dim := r.DimValue(); dim != "" {
			bounds = dim + ": " + bounds
		}
		line += "  [" + bounds + "]"
	}
	if !r.IsMovable() {
		line += " (locked)"
	}
	return line
}
