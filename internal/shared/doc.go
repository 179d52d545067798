// Package shared holds cross-cutting helpers that belong to no single
// domain package. Today that is only testutil, the archive fixture and
// log capture helpers used by the package tests.
package shared
