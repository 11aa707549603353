// Package config provides configuration structures and utilities for
// platcrawl. It defines the crawl options (origin URL template, store
// location, throttle, probing limits), the community seed list, and the
// report output preferences.
package config
