// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package sesmailer sends a text/html email through SES to every recipient
// of a gzipped CSV mailing list. Rows look like:
//
//	Sender Name <me@example.com>, Recipient Name <you@example.com>, subject
//
// The message bodies come from text_message.txt and html_message.html stored
// in the same bucket.
package sesmailer
