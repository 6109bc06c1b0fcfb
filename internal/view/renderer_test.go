package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/domain"
	"golang.org/x/net/html"
)

type pendingLoad struct {
	src  string
	done func()
}

type fakeImages struct{ loads []pendingLoad }

func (f *fakeImages) Load(src string, done func()) { f.loads = append(f.loads, pendingLoad{src, done}) }

// finish completes every pending load of src.
func (f *fakeImages) finish(src string) {
	for _, l := range f.loads {
		if l.src == src {
			l.done()
		}
	}
}

type fakeScheduler struct{ queue []func() }

func (f *fakeScheduler) Defer(fn func()) { f.queue = append(f.queue, fn) }

func (f *fakeScheduler) run() {
	q := f.queue
	f.queue = nil
	for _, fn := range q {
		fn()
	}
}

type fakeScroller struct{ scrolls []string }

func (f *fakeScroller) ScrollToBottom(id string) { f.scrolls = append(f.scrolls, id) }

type fakeResolver struct {
	pending map[string]func(string, error)
}

func (f *fakeResolver) Resolve(ref string, done func(string, error)) {
	if f.pending == nil {
		f.pending = map[string]func(string, error){}
	}
	f.pending[ref] = done
}

type fixture struct {
	r        *Renderer
	images   *fakeImages
	sched    *fakeScheduler
	scroller *fakeScroller
	resolver *fakeResolver
}

func newFixture(t *testing.T, s domain.Surface) *fixture {
	t.Helper()
	f := &fixture{images: &fakeImages{}, sched: &fakeScheduler{}, scroller: &fakeScroller{}, resolver: &fakeResolver{}}
	r, err := New(Ports{Images: f.images, Scheduler: f.sched, Scroller: f.scroller, Resolver: f.resolver})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r.SetSurface(s)
	f.r = r
	return f
}

func textEvent(id, name, text string) domain.Event {
	return domain.Event{ID: id, Kind: domain.Added, Fields: domain.Fields{Name: domain.Ptr(name), Text: domain.Ptr(text)}}
}

func imageEvent(id, uri string) domain.Event {
	return domain.Event{ID: id, Kind: domain.Changed, Fields: domain.Fields{ImageURI: domain.Ptr(uri)}}
}

func img(n *html.Node) *html.Node {
	return find(n, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == "img" })
}

func TestNewRequiresPorts(t *testing.T) {
	if _, err := New(Ports{}); !errors.Is(err, ErrMissingPort) {
		t.Fatalf("expected ErrMissingPort, got %v", err)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "hi"))
	f.r.Upsert(textEvent("m1", "alice", "hi again"))
	f.r.Upsert(textEvent("m1", "alice", "hi again"))

	container := f.r.ElementByID(PatientContainerID)
	if n := len(Children(container)); n != 1 {
		t.Fatalf("expected one node, got %d", n)
	}
	if got := TextContent(byClass(f.r.MessageNode("m1"), "message")); got != "hi again" {
		t.Fatalf("node not patched in place: %q", got)
	}
}

func TestUpsertKeepsArrivalOrder(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	for _, id := range []string{"c", "a", "b"} {
		f.r.Upsert(textEvent(id, "x", id))
	}
	var got []string
	for _, n := range Children(f.r.ElementByID(PatientContainerID)) {
		got = append(got, Attr(n, "id"))
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestFieldLevelPatch(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.r.Upsert(domain.Event{ID: "m1", Fields: domain.Fields{
		Name:      domain.Ptr("alice"),
		PhotoURL:  domain.Ptr("/p.png"),
		Text:      domain.Ptr("slept well"),
		Category:  domain.Ptr("sleep"),
		CreatedAt: &at,
	}})
	f.r.Upsert(domain.Event{ID: "m1", Kind: domain.Changed, Fields: domain.Fields{Category: domain.Ptr("mood")}})

	n := f.r.MessageNode("m1")
	if got := TextContent(byClass(n, "name")); got != "alice" {
		t.Fatalf("name lost: %q", got)
	}
	if got := TextContent(byClass(n, "message")); got != "slept well" {
		t.Fatalf("body lost: %q", got)
	}
	if got := TextContent(byClass(n, "category")); got != "mood" {
		t.Fatalf("category not patched: %q", got)
	}
	if got := TextContent(byClass(n, "created_at")); got != CreatedAtText(at) {
		t.Fatalf("created at %q", got)
	}
	if style := Attr(byClass(n, "pic"), "style"); style != "background-image: url(/p.png)" {
		t.Fatalf("picture style %q", style)
	}
}

func TestTextIsEscapedWithLineBreaks(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "<script>x</script>\nline two"))

	var buf bytes.Buffer
	if err := html.Render(&buf, byClass(f.r.MessageNode("m1"), "message")); err != nil {
		t.Fatal(err)
	}
	want := `<div class="message">&lt;script&gt;x&lt;/script&gt;<br/>line two</div>`
	if buf.String() != want {
		t.Fatalf("got %s\nwant %s", buf.String(), want)
	}
}

func TestExactlyOneBodyRegion(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "hello"))
	f.r.Upsert(imageEvent("m1", "https://example.com/a.png"))

	msg := byClass(f.r.MessageNode("m1"), "message")
	if TextContent(msg) != "" || img(msg) == nil {
		t.Fatalf("image body must replace text: %q", TextContent(msg))
	}

	f.r.Upsert(domain.Event{ID: "m1", Fields: domain.Fields{Text: domain.Ptr("back to text")}})
	if img(msg) != nil || TextContent(msg) != "back to text" {
		t.Fatal("text body must replace image")
	}
}

func TestMalformedRecordRendersEmptyMessage(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(domain.Event{ID: "m1", Fields: domain.Fields{Name: domain.Ptr("alice")}})
	n := f.r.MessageNode("m1")
	if n == nil {
		t.Fatal("malformed record must still get a node")
	}
	if msg := byClass(n, "message"); msg.FirstChild != nil {
		t.Fatal("message region should be empty")
	}
}

func TestImageFlowScrollsOnlyAfterRealImageLoads(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)

	// phase one: placeholder row
	f.r.Upsert(domain.Event{ID: "m1", Kind: domain.Added, Fields: domain.Fields{
		Name:     domain.Ptr("alice"),
		ImageURI: domain.Ptr(domain.LoadingImageURL),
	}})
	image := img(f.r.MessageNode("m1"))
	if Attr(image, "src") != domain.LoadingImageURL {
		t.Fatalf("expected loading image, got %q", Attr(image, "src"))
	}
	f.images.finish(domain.LoadingImageURL)
	if len(f.scroller.scrolls) != 0 {
		t.Fatal("loading placeholder must not scroll")
	}

	// phase two: the reference arrives and resolves
	ref := domain.MediaRefPrefix + "abc"
	f.r.Upsert(imageEvent("m1", ref))
	image = img(f.r.MessageNode("m1"))
	if Attr(image, "src") != domain.LoadingImageURL {
		t.Fatalf("unresolved reference must show loading image, got %q", Attr(image, "src"))
	}
	f.resolver.pending[ref]("https://cdn.test/abc.png", nil)
	if Attr(image, "src") != "https://cdn.test/abc.png" {
		t.Fatalf("resolved url not shown: %q", Attr(image, "src"))
	}
	if len(f.scroller.scrolls) != 0 {
		t.Fatal("scrolled before the real image loaded")
	}

	f.images.finish("https://cdn.test/abc.png")
	if len(f.scroller.scrolls) != 1 || f.scroller.scrolls[0] != PatientContainerID {
		t.Fatalf("expected one scroll of the patient container, got %v", f.scroller.scrolls)
	}
}

func TestStaleImageLoadDoesNotScroll(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(imageEvent("m1", "https://example.com/old.png"))
	f.r.Upsert(imageEvent("m1", "https://example.com/new.png"))

	f.images.finish("https://example.com/old.png")
	if len(f.scroller.scrolls) != 0 {
		t.Fatal("load of a replaced image scrolled")
	}
	f.images.finish("https://example.com/new.png")
	if len(f.scroller.scrolls) != 1 {
		t.Fatalf("expected one scroll, got %d", len(f.scroller.scrolls))
	}
}

func TestStaleResolveIsIgnored(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	ref := domain.MediaRefPrefix + "old"
	f.r.Upsert(imageEvent("m1", ref))
	f.r.Upsert(imageEvent("m1", "https://example.com/direct.png"))

	f.resolver.pending[ref]("https://cdn.test/old.png", nil)
	if src := Attr(img(f.r.MessageNode("m1")), "src"); src != "https://example.com/direct.png" {
		t.Fatalf("stale resolve overwrote image: %q", src)
	}
}

func TestVisibleIsDeferred(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "hi"))
	n := f.r.MessageNode("m1")
	if HasClass(n, "visible") {
		t.Fatal("visible must not be set synchronously")
	}
	f.sched.run()
	if !HasClass(n, "visible") {
		t.Fatal("visible not set after deferred run")
	}
}

func TestCommentsRenderedOnlyWhenPresent(t *testing.T) {
	f := newFixture(t, domain.SurfaceStaff)
	f.r.Upsert(textEvent("m1", "alice", "hi"))
	comments := byClass(f.r.MessageNode("m1"), "comments")
	if comments.FirstChild != nil {
		t.Fatal("empty thread must not render")
	}

	f.r.Upsert(domain.Event{ID: "m1", Kind: domain.Changed, Fields: domain.Fields{Comments: []string{"<b>rest</b>", "water"}}})
	f.r.Upsert(domain.Event{ID: "m1", Kind: domain.Changed, Fields: domain.Fields{Comments: []string{"<b>rest</b>", "water", "sleep"}}})

	ul := find(comments, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "ul" })
	lis := Children(ul)
	if len(lis) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(lis))
	}
	if TextContent(lis[0]) != "rest" {
		t.Fatalf("comment not sanitized: %q", TextContent(lis[0]))
	}
	if !strings.HasPrefix(TextContent(comments), "Comments") {
		t.Fatalf("missing heading: %q", TextContent(comments))
	}
}

func TestCommentsKeepSpecialCharacters(t *testing.T) {
	f := newFixture(t, domain.SurfaceStaff)
	f.r.Upsert(domain.Event{ID: "m1", Kind: domain.Added, Fields: domain.Fields{
		Name:     domain.Ptr("alice"),
		Text:     domain.Ptr("hi"),
		Comments: []string{"BP 120 < 140 & stable", "don't skip", `say "ok"`, "<script>x()</script>fine"},
	}})

	ul := find(byClass(f.r.MessageNode("m1"), "comments"), func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "ul" })
	want := []string{"BP 120 < 140 & stable", "don't skip", `say "ok"`, "fine"}
	lis := Children(ul)
	if len(lis) != len(want) {
		t.Fatalf("expected %d comments, got %d", len(want), len(lis))
	}
	for i, li := range lis {
		if got := TextContent(li); got != want[i] {
			t.Fatalf("comment %d: got %q want %q", i, got, want[i])
		}
	}

	var buf bytes.Buffer
	if err := f.r.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<li>BP 120 &lt; 140 &amp; stable</li>") {
		t.Fatalf("comment escaped wrongly:\n%s", out)
	}
	if strings.Contains(out, "&amp;lt;") || strings.Contains(out, "&amp;#39;") || strings.Contains(out, "<script>") {
		t.Fatalf("comment double escaped or unsanitized:\n%s", out)
	}
}

func TestRoleDecidesCommentForm(t *testing.T) {
	patient := newFixture(t, domain.SurfacePatient)
	patient.r.Upsert(textEvent("m1", "alice", "hi"))
	if byClass(patient.r.MessageNode("m1"), "add-comment-form") != nil {
		t.Fatal("patient surface node got a comment form")
	}
	if byClass(patient.r.Document(), "add_comment") != nil {
		t.Fatal("patient surface got an add comment link")
	}

	staff := newFixture(t, domain.SurfaceStaff)
	staff.r.Upsert(textEvent("m1", "alice", "hi"))
	form := staff.r.ElementByID("m1_comment_form")
	if form == nil || !IsHidden(form) {
		t.Fatal("staff node must carry a hidden comment form")
	}
	if staff.r.ElementByID("m1_comment") == nil {
		t.Fatal("comment input missing")
	}
	if Attr(staff.r.MessageNode("m1").Parent, "id") != StaffContainerID {
		t.Fatal("staff node in the wrong container")
	}

	if !staff.r.OpenCommentForm("m1") || IsHidden(form) {
		t.Fatal("form did not open")
	}
	staff.r.CloseCommentForm("m1")
	if !IsHidden(form) {
		t.Fatal("form did not close")
	}
}

func TestSurfaceCards(t *testing.T) {
	f := newFixture(t, domain.SurfaceStaff)
	if !IsHidden(f.r.ElementByID(PatientCardID)) || IsHidden(f.r.ElementByID(StaffCardID)) {
		t.Fatal("staff surface must show only the staff card")
	}
	f.r.Upsert(textEvent("m1", "alice", "hi"))
	f.r.SetSurface(domain.SurfacePatient)
	if Attr(f.r.MessageNode("m1").Parent, "id") != StaffContainerID {
		t.Fatal("rendered node moved containers")
	}

	f.r.Clear()
	if f.r.Len() != 0 || f.r.Surface() != domain.SurfaceNone {
		t.Fatal("Clear left state behind")
	}
	if !IsHidden(f.r.ElementByID(PatientCardID)) || !IsHidden(f.r.ElementByID(StaffCardID)) {
		t.Fatal("no card should show after Clear")
	}
}

func TestProfileAndSendButton(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.ShowProfile(domain.Identity{DisplayName: "Alice"})
	if TextContent(f.r.ElementByID(UserNameID)) != "Alice" {
		t.Fatal("name not shown")
	}
	if !strings.Contains(Attr(f.r.ElementByID(UserPicID), "style"), domain.ProfilePlaceholderURL) {
		t.Fatal("placeholder picture not used")
	}
	if !IsHidden(f.r.ElementByID(SignInID)) || IsHidden(f.r.ElementByID(SignOutID)) {
		t.Fatal("sign-in/out buttons not toggled")
	}
	f.r.HideProfile()
	if IsHidden(f.r.ElementByID(SignInID)) || !IsHidden(f.r.ElementByID(UserNameID)) {
		t.Fatal("profile not hidden")
	}

	if f.r.SendEnabled() {
		t.Fatal("send button starts disabled")
	}
	f.r.SetSendEnabled(true)
	if !f.r.SendEnabled() {
		t.Fatal("send button not enabled")
	}
}

func TestRenderWritesDocument(t *testing.T) {
	f := newFixture(t, domain.SurfacePatient)
	f.r.Upsert(textEvent("m1", "alice", "hi"))
	var buf bytes.Buffer
	if err := f.r.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), `<div class="message-container" id="m1">`) {
		t.Fatalf("rendered document missing node: %s", buf.String())
	}
}
