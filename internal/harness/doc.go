// Package harness runs matching scenarios against the real engine and
// checks the resulting groups.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	threshold: 0.6            # optional, overrides the default config
//	group_ids: [g1, g2]       # optional, ids handed out to new groups
//	batches:
//	  - fresh: false
//	    records:
//	      - type: Customer
//	        id: A
//	        transaction: NYC_t1_ownBusiness_777
//	        attributes: { FirstName: Ann, LastName: Lee }
//	      - type: Counter-Party
//	        id: B
//	        transaction: NYC_t2_billPayed_777_50.00
//	        key: "FirstName_LastName:Bob_Ray"
//	assertions:
//	  - type: group_count
//	    count: 1
//	  - type: together
//	    entities: [A, B]
//	  - type: link
//	    group: g1
//	    entity: B
//	    link: ""
//
// A record gives either a ready-made compound key or an attribute map;
// attributes are keyed with the configured templates.
//
// # Assertion Types
//
//   - group_count: number of groups in the store
//   - together: every record of the listed entities sits in one group
//   - apart: no group holds more than one of the listed entities
//   - members: exact ordered entity ids of a group
//   - link: LinkGroupID of an entity's record within a group
//   - profile: subset match on a group's canonical profile row
//   - comparisons, skipped, orphans: totals across all batches
//
// # Deterministic Testing
//
// Every scenario runs on a fresh in-memory store with a fixed group id
// sequence, so results are stable enough for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/founder.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
