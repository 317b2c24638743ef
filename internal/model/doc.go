// Package model defines the data types shared by the crawler packages:
// fetch outcomes, their failure reasons and extracted anchors.
package model
