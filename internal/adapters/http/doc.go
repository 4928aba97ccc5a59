// Package http implements ports.BatchSender over HTTP. Batches are POSTed
// as {"transactions":[...]} with an "apikey" Authorization header.
package http
