package view

import (
	"strings"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
)

// Filter shows the patient-surface messages whose sender name equals value,
// ignoring case but not surrounding spaces, and hides the others. An empty
// value shows everything.
func (r *Renderer) Filter(value string) {
	setAttr(r.ElementByID(FilterInputID), "value", value)
	for _, id := range r.order {
		mn := r.nodes[id]
		if mn.surface == domain.SurfaceStaff {
			continue
		}
		show := value == "" || strings.EqualFold(TextContent(mn.name), value)
		setHidden(mn.root, !show)
	}
}
