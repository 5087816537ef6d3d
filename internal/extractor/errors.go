package extractor

import "errors"

var errParseFailed = errors.New("extractor: tree-sitter parse returned no tree")
