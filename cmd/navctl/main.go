// Command navctl prints the navigation a role would see, computed from the
// built-in catalog plus any configured feature manifests.
package main

func main() {
	Execute()
}
