// Package pschema builds overlay shapes from a declarative YAML schema.
//
// A schema names a root type and declares any containers it uses:
//
//	root: State
//	containers:
//	  - name: State
//	    fields:
//	      - {name: slot, type: uint64}
//	      - {name: balances, type: "list<uint64, 1099511627776>"}
//	      - {name: latest, type: Checkpoint}
//	  - name: Checkpoint
//	    fields:
//	      - {name: epoch, type: uint64}
//	      - {name: root, type: "vector<uint8, 32>"}
//
// Type expressions are scalar names (bool, uint8 through uint256),
// vector<T, N>, list<T, N>, or the name of a declared container.
// Containers may be declared in any order, but must not refer to themselves.
package pschema
