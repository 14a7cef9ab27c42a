/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package model holds the core entities of the warehouse simulation:
// items, pods, bots, stations, orders, requests and tasks.
package model

// Item is an SKU identity. Equality is by ID.
type Item struct {
	ID string
}

// Equal reports whether two items name the same SKU.
func (i Item) Equal(o Item) bool { return i.ID == o.ID }

// Position is one (item, required-count) line of an order or insert batch.
type Position struct {
	Item     Item
	Required int
}
