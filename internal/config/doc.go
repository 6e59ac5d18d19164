// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for awsops' user
// configuration. The configuration is a YAML document located at the path in
// AWSOPS_CFG_FILE or in the user's configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/awsops.yaml or $HOME/.config/awsops.yaml
//   - macOS: $HOME/Library/Application Support/awsops.yaml
//   - Windows: %APPDATA%/awsops.yaml
//
// Keys are namespaced by subcommand, e.g.:
//
//	region: us-east-1
//	publish:
//	  workers: 1000
//	  log_time: true
//	mail:
//	  workers: 10
//	  text_message_file: text_message.txt
package config
