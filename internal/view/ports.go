package view

// The renderer never blocks and never runs anything concurrently: every port
// callback must be invoked on the same goroutine that drives the Renderer.

// ImageLoader fetches the image at src and calls done once it has loaded.
// A failed load never calls done.
type ImageLoader interface {
	Load(src string, done func())
}

// Scheduler runs fn later, after the current handler has returned.
type Scheduler interface {
	Defer(fn func())
}

// Scroller scrolls the container with the given element id to its end.
type Scroller interface {
	ScrollToBottom(containerID string)
}

// Resolver turns a store reference into a fetchable URL.
type Resolver interface {
	Resolve(ref string, done func(url string, err error))
}

// Ports bundles the effects the renderer needs.
type Ports struct {
	Images    ImageLoader
	Scheduler Scheduler
	Scroller  Scroller
	Resolver  Resolver
}
