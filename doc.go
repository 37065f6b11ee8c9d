/*
Package snapscan provides a client for the SnapScan merchant API.

Highlights:
  - HTTP Basic authentication with the merchant API key
  - Status-range error classification into configuration, decode, client and server errors
  - Bounded fixed-delay retry for cash-up payment lookups
  - QR code URL generation and parsing without any network call

Quick start:

	import (
	    "log"
	    snapscan "github.com/jfxdev/go-snapscan"
	)

	func main() {
	    client, err := snapscan.New(snapscan.Config{
	        Snapcode: "ABC",
	        APIKey:   "secret",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }

	    // Latest payments
	    _, _ = client.GetPayments(&snapscan.Pagination{PerPage: snapscan.Int(20)})
	}

Errors returned by the client wrap a *Error; use GetErrorCode or the Is*Error
helpers to branch on its ErrorCode.
*/
package snapscan
