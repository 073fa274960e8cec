// Package utils provides loose type conversions for values decoded from
// backend JSON, where the same field may arrive as a number or a string.
package utils
