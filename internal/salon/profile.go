package salon

import (
	"fmt"
	"strings"
)

// Stylist pairs a staff member with their specialization.
type Stylist struct {
	Name      string
	Specialty string
}

// Profile describes the salon the receptionist answers for. It feeds the
// system prompt, the greeting, and the fallback extraction vocabularies.
type Profile struct {
	Name         string
	Services     []string
	Stylists     []Stylist
	Hours        string
	BookingSlots []string
}

// DefaultProfile returns the Gloss & Glow configuration.
func DefaultProfile(name string) *Profile {
	if strings.TrimSpace(name) == "" {
		name = "Gloss & Glow Hair Salon"
	}
	return &Profile{
		Name:     name,
		Services: []string{"Haircut", "Hair Coloring", "Styling", "Spa Treatment"},
		Stylists: []Stylist{
			{Name: "Riya", Specialty: "Haircuts & Styling"},
			{Name: "Maya", Specialty: "Hair Coloring & Highlights"},
			{Name: "Sarah", Specialty: "Spa Treatments & Hair Care"},
			{Name: "Alex", Specialty: "Creative Cuts & Color"},
		},
		Hours: "Monday-Saturday, 10 AM - 7 PM",
		BookingSlots: []string{
			"10:00 AM", "11:00 AM", "12:00 PM", "2:00 PM",
			"3:00 PM", "4:00 PM", "5:00 PM", "6:00 PM",
		},
	}
}

// StylistNames returns the staff first names in listed order.
func (p *Profile) StylistNames() []string {
	names := make([]string, 0, len(p.Stylists))
	for _, s := range p.Stylists {
		names = append(names, s.Name)
	}
	return names
}

// Greeting is the assistant's opening line on a new session.
func (p *Profile) Greeting() string {
	return fmt.Sprintf("Hello! Welcome to %s. I'm your AI receptionist. How can I help you today?", p.Name)
}

// SystemPrompt renders the receptionist instructions for the generator.
func (p *Profile) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly AI receptionist for %s, a premium hair salon.\n\n", p.Name)

	b.WriteString("SALON DETAILS:\n")
	fmt.Fprintf(&b, "- Services: %s\n", strings.Join(p.Services, ", "))
	b.WriteString("- Stylists and Specializations:\n")
	for _, s := range p.Stylists {
		fmt.Fprintf(&b, "  * %s: %s\n", s.Name, s.Specialty)
	}
	fmt.Fprintf(&b, "- Hours: %s\n", p.Hours)
	fmt.Fprintf(&b, "- Available slots: %s\n\n", strings.Join(p.BookingSlots, ", "))

	b.WriteString(`YOUR ROLE:
1. Greet customers warmly and professionally
2. Help them choose services based on their needs
3. Collect booking information: name, service, stylist, date, time, and email
4. Confirm appointments clearly
5. Answer questions about services and policies

BOOKING PROCESS:
- Ask for: customer name, service type, preferred stylist, date, time, and email
- Suggest appropriate stylists based on service
- Confirm all details before booking
- Inform about email confirmation

STYLE:
- Warm, professional, conversational
- Keep responses concise (2-3 sentences max)
- Ask one question at a time
- Be helpful and knowledgeable

Remember: You represent the salon's first impression!`)
	return b.String()
}
