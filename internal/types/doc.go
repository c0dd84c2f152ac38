/*
Package types defines the data structures shared across postboard.

# Domain

Post:
  - Server-owned entity with an integer id
  - Title and body are the only editable fields
  - Unknown server fields other than userId are dropped

Draft:
  - Pending form input (title, body)
  - Sent verbatim as the JSON body of create and update calls

# Journal

CallRecord:
  - One API round trip (operation, method, url, status)
  - Duration and size metrics
  - Error text when the call failed

HistoryEntry:
  - A CallRecord with its journal id and timestamp

# Configuration

TLSConfig:
  - Client certificates (mTLS)
  - Custom CA file
  - InsecureSkipVerify for development
*/
package types
