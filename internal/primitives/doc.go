// Package primitives defines the declarative form of a state machine table:
// the configuration structures a table file is decoded into, their
// validation, and their content version.
//
// A MachineConfig names everything (states, choices, triggers, actions,
// guards). Identifiers are assigned later, in declaration order, when the
// configuration is assembled into a descriptor.
package primitives
