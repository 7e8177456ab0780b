// Package processor provides content processing implementations.
package processor

import "github.com/ZaguanLabs/mailtl"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = mailtl.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = mailtl.TextNode
