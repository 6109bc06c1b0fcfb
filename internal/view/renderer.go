// Package view projects journal messages onto an HTML document tree. The
// projection is keyed by message id: a message gets exactly one node, which
// later events patch in place.
package view

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Element ids of the page skeleton.
const (
	PatientContainerID = "messages"
	StaffContainerID   = "messages-for-doctors"
	PatientCardID      = "messages-card"
	StaffCardID        = "messages-card-for-doctors"
	UserPicID          = "user-pic"
	UserNameID         = "user-name"
	SignInID           = "sign-in"
	SignOutID          = "sign-out"
	MessageInputID     = "message"
	CategoryInputID    = "category"
	SubmitID           = "submit"
	FilterInputID      = "filter"
)

// createdAtLayout mirrors how browsers print a Date.
const createdAtLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

const skeleton = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Health Journal</title></head>
<body>
<header><div id="user-container">
<div id="user-pic" hidden></div><div id="user-name" hidden></div>
<button id="sign-out" hidden>Sign-out</button><button id="sign-in">Sign-in</button>
</div></header>
<main>
<div id="messages-card" style="display: none">
<div id="messages"></div>
<form id="message-form" action="#"><input id="message" type="text"><input id="category" type="text"><button id="submit" type="submit" disabled>Send</button></form>
<form id="image-form" action="#"><input id="mediaCapture" type="file" accept="image/*"></form>
<form id="filter-form" action="#"><input id="filter" type="text"></form>
</div>
<div id="messages-card-for-doctors" style="display: none">
<div id="messages-for-doctors"></div>
</div>
</main>
</body></html>`

// ErrMissingPort is returned by New when a port is nil.
var ErrMissingPort = errors.New("view: renderer port not configured")

// Renderer owns the document. It is not safe for concurrent use.
type Renderer struct {
	doc      *html.Node
	ports    Ports
	surface  domain.Surface
	nodes    map[string]*messageNode
	order    []string
	sanitize *bluemonday.Policy
}

type messageNode struct {
	id       string
	surface  domain.Surface
	root     *html.Node
	pic      *html.Node
	message  *html.Node
	name     *html.Node
	category *html.Node
	created  *html.Node
	comments *html.Node
	form     *html.Node
	input    *html.Node

	img      *html.Node
	imageURI string // what the message points at: a URL or a reference
	src      string // what the img element currently shows
}

// New builds an empty page with no active surface.
func New(p Ports) (*Renderer, error) {
	if p.Images == nil || p.Scheduler == nil || p.Scroller == nil || p.Resolver == nil {
		return nil, ErrMissingPort
	}
	doc, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		return nil, err
	}
	return &Renderer{
		doc:      doc,
		ports:    p,
		nodes:    map[string]*messageNode{},
		sanitize: bluemonday.StrictPolicy(),
	}, nil
}

// Document returns the root of the tree.
func (r *Renderer) Document() *html.Node { return r.doc }

// ElementByID finds any element of the document by its id attribute.
func (r *Renderer) ElementByID(id string) *html.Node { return byID(r.doc, id) }

// Render writes the whole document as HTML.
func (r *Renderer) Render(w io.Writer) error { return html.Render(w, r.doc) }

// Surface returns the active surface.
func (r *Renderer) Surface() domain.Surface { return r.surface }

// Len returns the number of rendered messages.
func (r *Renderer) Len() int { return len(r.nodes) }

// IDs returns the rendered message ids in insertion order.
func (r *Renderer) IDs() []string { return append([]string(nil), r.order...) }

// MessageNode returns the node of message id, or nil.
func (r *Renderer) MessageNode(id string) *html.Node {
	if mn, ok := r.nodes[id]; ok {
		return mn.root
	}
	return nil
}

// SetSurface selects where new messages go and which card is displayed.
// Messages already rendered stay in their container.
func (r *Renderer) SetSurface(s domain.Surface) {
	r.surface = s
	setHidden(r.ElementByID(PatientCardID), s != domain.SurfacePatient)
	setHidden(r.ElementByID(StaffCardID), s != domain.SurfaceStaff)
}

// Clear drops every rendered message and deactivates both surfaces.
func (r *Renderer) Clear() {
	removeChildren(r.ElementByID(PatientContainerID))
	removeChildren(r.ElementByID(StaffContainerID))
	r.nodes = map[string]*messageNode{}
	r.order = nil
	r.SetSurface(domain.SurfaceNone)
}

func containerID(s domain.Surface) string {
	if s == domain.SurfaceStaff {
		return StaffContainerID
	}
	return PatientContainerID
}

// Upsert creates the node of ev.ID on first sight and patches the fields
// ev carries. Absent fields keep their current rendering.
func (r *Renderer) Upsert(ev domain.Event) {
	mn, ok := r.nodes[ev.ID]
	if !ok {
		mn = r.create(ev.ID)
	}
	f := ev.Fields

	if f.PhotoURL != nil && *f.PhotoURL != "" {
		setAttr(mn.pic, "style", "background-image: url("+*f.PhotoURL+")")
	}
	if f.Name != nil {
		setText(mn.name, *f.Name)
	}
	if f.Category != nil {
		setText(mn.category, *f.Category)
	}
	if f.CreatedAt != nil {
		setText(mn.created, CreatedAtText(*f.CreatedAt))
	}

	switch b := f.Body().(type) {
	case domain.TextBody:
		r.setTextBody(mn, b.Content)
		r.ports.Scroller.ScrollToBottom(containerID(mn.surface))
	case domain.ImageBody:
		if b.URI != mn.imageURI || mn.img == nil {
			r.setImageBody(mn, b.URI)
		}
	}

	if len(f.Comments) > 0 {
		r.setComments(mn, f.Comments)
	}
}

func (r *Renderer) create(id string) *messageNode {
	mn := &messageNode{id: id, surface: r.surface}
	mn.root = element("div", "class", "message-container", "id", id)
	spacing := element("div", "class", "spacing")
	mn.pic = element("div", "class", "pic")
	spacing.AppendChild(mn.pic)
	mn.message = element("div", "class", "message")
	mn.name = element("div", "class", "name")
	mn.category = element("div", "class", "category")
	mn.created = element("div", "class", "created_at")
	mn.comments = element("div", "class", "comments")
	for _, c := range []*html.Node{spacing, mn.message, mn.name, mn.category, mn.created, mn.comments} {
		mn.root.AppendChild(c)
	}
	if mn.surface == domain.SurfaceStaff {
		r.appendCommentForm(mn)
	}

	r.ElementByID(containerID(mn.surface)).AppendChild(mn.root)
	r.nodes[id] = mn
	r.order = append(r.order, id)

	root := mn.root
	r.ports.Scheduler.Defer(func() { addClass(root, "visible") })
	return mn
}

func (r *Renderer) appendCommentForm(mn *messageNode) {
	a := element("a", "class", "add_comment", "href", "#")
	a.AppendChild(textNode("Add Comment"))
	mn.root.AppendChild(a)

	mn.form = element("form", "id", mn.id+"_comment_form", "class", "add-comment-form", "action", "#")
	setHidden(mn.form, true)
	mn.input = element("input", "id", mn.id+"_comment", "class", "mdl_textfield__input", "type", "text")
	submit := element("button", "id", mn.id+"_comment_submit", "type", "submit")
	submit.AppendChild(textNode("Add"))
	closeBtn := element("button", "id", mn.id+"_comment_close", "type", "button")
	closeBtn.AppendChild(textNode("Close"))
	mn.form.AppendChild(mn.input)
	mn.form.AppendChild(submit)
	mn.form.AppendChild(closeBtn)
	mn.root.AppendChild(mn.form)
}

// setTextBody renders text escaped, with line breaks as <br>.
func (r *Renderer) setTextBody(mn *messageNode, text string) {
	removeChildren(mn.message)
	mn.img, mn.imageURI, mn.src = nil, "", ""
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			mn.message.AppendChild(element("br"))
		}
		if line != "" {
			mn.message.AppendChild(textNode(line))
		}
	}
}

func (r *Renderer) setImageBody(mn *messageNode, uri string) {
	removeChildren(mn.message)
	mn.img = element("img")
	mn.message.AppendChild(mn.img)
	mn.imageURI = uri

	if !strings.HasPrefix(uri, domain.MediaRefPrefix) {
		r.setSrc(mn, uri)
		return
	}
	r.setSrc(mn, domain.LoadingImageURL)
	img := mn.img
	r.ports.Resolver.Resolve(uri, func(url string, err error) {
		if err != nil {
			log.Error().Err(err).Str("ref", uri).Msg("resolve image reference failed")
			return
		}
		// the node may have moved on to another image meanwhile
		if mn.img != img || mn.imageURI != uri {
			return
		}
		r.setSrc(mn, url)
	})
}

// setSrc points the img at src. Only the load of the image still shown,
// and never the loading placeholder, scrolls the container.
func (r *Renderer) setSrc(mn *messageNode, src string) {
	setAttr(mn.img, "src", src)
	mn.src = src
	img := mn.img
	r.ports.Images.Load(src, func() {
		if mn.img != img || mn.src != src || src == domain.LoadingImageURL {
			return
		}
		r.ports.Scroller.ScrollToBottom(containerID(mn.surface))
	})
}

func (r *Renderer) setComments(mn *messageNode, comments []string) {
	removeChildren(mn.comments)
	mn.comments.AppendChild(textNode("Comments"))
	ul := element("ul")
	for _, c := range comments {
		li := element("li")
		// sanitized output is markup, not text
		if err := appendHTML(li, r.sanitize.Sanitize(c)); err != nil {
			removeChildren(li)
			li.AppendChild(textNode(c))
		}
		ul.AppendChild(li)
	}
	mn.comments.AppendChild(ul)
}

// OpenCommentForm shows the comment form of message id and clears its input.
func (r *Renderer) OpenCommentForm(id string) bool {
	mn, ok := r.nodes[id]
	if !ok || mn.form == nil {
		return false
	}
	setAttr(mn.input, "value", "")
	setHidden(mn.form, false)
	return true
}

// CloseCommentForm hides the comment form of message id and clears its input.
func (r *Renderer) CloseCommentForm(id string) {
	mn, ok := r.nodes[id]
	if !ok || mn.form == nil {
		return
	}
	setAttr(mn.input, "value", "")
	setHidden(mn.form, true)
}

// SetCommentInput mirrors what the operator typed into a comment form.
func (r *Renderer) SetCommentInput(id, value string) {
	if mn, ok := r.nodes[id]; ok && mn.input != nil {
		setAttr(mn.input, "value", value)
	}
}

// ShowProfile displays the signed-in user and hides the sign-in button.
func (r *Renderer) ShowProfile(id domain.Identity) {
	pic := r.ElementByID(UserPicID)
	name := r.ElementByID(UserNameID)
	setAttr(pic, "style", "background-image: url("+id.Picture()+")")
	setText(name, id.DisplayName)
	removeAttr(pic, "hidden")
	removeAttr(name, "hidden")
	removeAttr(r.ElementByID(SignOutID), "hidden")
	setAttr(r.ElementByID(SignInID), "hidden", "true")
}

// HideProfile reverts ShowProfile.
func (r *Renderer) HideProfile() {
	pic := r.ElementByID(UserPicID)
	name := r.ElementByID(UserNameID)
	removeAttr(pic, "style")
	setText(name, "")
	setAttr(pic, "hidden", "true")
	setAttr(name, "hidden", "true")
	setAttr(r.ElementByID(SignOutID), "hidden", "true")
	removeAttr(r.ElementByID(SignInID), "hidden")
}

// SetMessageInput mirrors the message and category inputs.
func (r *Renderer) SetMessageInput(text, category string) {
	setAttr(r.ElementByID(MessageInputID), "value", text)
	setAttr(r.ElementByID(CategoryInputID), "value", category)
}

// SetSendEnabled toggles the send button.
func (r *Renderer) SetSendEnabled(enabled bool) {
	btn := r.ElementByID(SubmitID)
	if enabled {
		removeAttr(btn, "disabled")
		return
	}
	setAttr(btn, "disabled", "true")
}

// SendEnabled reports whether the send button is enabled.
func (r *Renderer) SendEnabled() bool {
	_, disabled := attr(r.ElementByID(SubmitID), "disabled")
	return !disabled
}

// CreatedAtText formats t the way message nodes show it.
func CreatedAtText(t time.Time) string {
	return t.Local().Format(createdAtLayout)
}
