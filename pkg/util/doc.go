// Package util provides shared helpers used across wiretap packages.
package util
