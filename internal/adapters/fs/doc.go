// Package fs reads transactions from the local file system.
package fs
