// Package services holds nova's core logic: the vector store with its
// pending buffer and flush loop, the search facade every frontend calls,
// the directory indexer and watcher, and the OCR and image description
// services with their caches.
package services
