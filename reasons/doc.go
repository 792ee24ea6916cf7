// Package reasons names the comment and exclusion reasons the classifier
// and matcher attach to events and case rows.
//
// A small, dependency-free package of named reason strings: every comment a
// case row can carry, and the classifier's exclusion log messages, has one
// named constant or template here, so the wording in the CLI's CSV output
// comes from a single place. Decoder diagnostics are logged as inline
// literals, and tests spell out the expected wording themselves.
package reasons
