// Package record defines the unit of work for the linkage engine.
//
// A Record is one row of a transaction feed seen from one party's point of
// view: who the party is (Type, EntityID), what happened (Transaction), and
// which identifying attributes it carried (CompoundKey).
//
// # Encodings
//
// Transactions are underscore-delimited tuples:
//
//	location_timestamp_kind_party_amount
//
// Compound keys are a template name and the values that instantiate it:
//
//	FirstName_LastName_Zipcode:Ada_Lovelace_10001
//
// Both encodings are kept verbatim on the Record. Parsing never rewrites
// the text, so a value written to the store reads back byte-identical and
// exact-match scoring stays stable across batches.
package record
