// Package cache keeps synthesized speech so that reading the same caption
// with the same voice twice does not run the engine again. An in-memory
// LRU (L1) sits in front of a zstd-compressed disk cache (L2).
package cache
