// Package mailtl translates the English prose of HTML email templates to Thai.
//
// Template placeholders (#NAME#, [#NAME#]) and URLs are never sent to the
// translation provider: each text node is split into opaque and translatable
// segments, only the translatable ones are translated, and the pieces are
// stitched back together. A failed translation leaves the original text in
// place.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/mailtl"
//	    "github.com/ZaguanLabs/mailtl/cache"
//	    "github.com/ZaguanLabs/mailtl/processor"
//	    "github.com/ZaguanLabs/mailtl/provider"
//	)
//
//	func main() {
//	    p := provider.NewGoogleProvider(provider.GoogleConfig{})
//
//	    t := mailtl.NewTranslator("th", p,
//	        mailtl.WithCache(cache.NewInMemoryCache(3600)),
//	        mailtl.WithProcessor(processor.NewHTMLProcessor()),
//	    )
//
//	    result, err := t.ProcessHTML(context.Background(), "<p>Hello #NAME#!</p>")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content) // <p>สวัสดี #NAME#!</p>
//	}
package mailtl
